package httpx

import (
	"fmt"
	"net/http"
)

// Business error codes
const (
	CodeSuccess = 0

	// 认证/鉴权 (1000-1099)
	CodeUnauthorized = 1001 // token missing
	CodeInvalidToken = 1002
	CodeTokenExpired = 1003
	CodeForbidden    = 1004 // role does not allow the operation

	// 参数错误 (2000-2099)
	CodeParamMissing = 2001
	CodeParamInvalid = 2002

	// 资源/业务错误 (3000-3999)
	CodeNotFound         = 3001
	CodeStateConflict    = 3003 // another workflow action is running
	CodeVersionConflict  = 3004 // release changed since the caller loaded it
	CodeEntityLimit      = 3005 // release holds too many entities
	CodeValidationFailed = 3006 // CMA rejected the payload or entities failed validation
	CodeActionFailed     = 3007 // release action ended in failed
	CodeActionTimeout    = 3008 // release action still running after the last poll

	// 系统错误 (5000-5999)
	CodeInternalError = 5001
	CodeDatabaseError = 5002
	CodeExternalError = 5003 // CMA unreachable or returned an unexpected status
)

// AppError represents an application error with HTTP status and business code
type AppError struct {
	HTTPStatus int         // HTTP status code
	Code       int         // Business error code
	Message    string      // User-facing error message
	Err        error       // Internal error (for logging only, not returned to client)
	Data       interface{} // Additional data (for detailed error information)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%d, message=%s, err=%v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

// Unwrap exposes the internal error to errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithData adds additional data to the error
func (e *AppError) WithData(data interface{}) *AppError {
	e.Data = data
	return e
}

// NewAppError creates a new AppError
func NewAppError(httpStatus, code int, message string, err error) *AppError {
	return &AppError{
		HTTPStatus: httpStatus,
		Code:       code,
		Message:    message,
		Err:        err,
	}
}

func orDefault(message, def string) string {
	if message == "" {
		return def
	}
	return message
}

// ErrUnauthorized creates a 401 unauthorized error
func ErrUnauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, orDefault(message, "unauthorized"), nil)
}

// ErrInvalidToken creates a 401 invalid token error
func ErrInvalidToken(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeInvalidToken, orDefault(message, "invalid token"), nil)
}

// ErrTokenExpired creates a 401 token expired error
func ErrTokenExpired(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeTokenExpired, orDefault(message, "token expired"), nil)
}

// ErrForbidden creates a 403 forbidden error
func ErrForbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, orDefault(message, "forbidden"), nil)
}

// ErrParamMissing creates a 400 parameter missing error
func ErrParamMissing(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeParamMissing, orDefault(message, "parameter missing"), nil)
}

// ErrParamInvalid creates a 400 parameter invalid error
func ErrParamInvalid(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeParamInvalid, orDefault(message, "parameter format error"), nil)
}

// ErrNotFound creates a 404 not found error
func ErrNotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, orDefault(message, "resource not found"), nil)
}

// ErrStateConflict creates a 409 state conflict error
func ErrStateConflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeStateConflict, orDefault(message, "current state does not allow operation"), nil)
}

// ErrVersionConflict creates a 409 version conflict error
func ErrVersionConflict(message string, err error) *AppError {
	return NewAppError(http.StatusConflict, CodeVersionConflict, orDefault(message, "release was modified, reload and retry"), err)
}

// ErrEntityLimit creates a 422 entity limit error
func ErrEntityLimit(message string, err error) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeEntityLimit, orDefault(message, "release exceeds the entity limit"), err)
}

// ErrValidationFailed creates a 422 validation error
func ErrValidationFailed(message string, err error) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeValidationFailed, orDefault(message, "validation failed"), err)
}

// ErrActionFailed creates a 502 error for a release action that ended in failed
func ErrActionFailed(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, CodeActionFailed, orDefault(message, "release action failed"), err)
}

// ErrActionTimeout creates a 504 error for a release action that never finished
func ErrActionTimeout(message string, err error) *AppError {
	return NewAppError(http.StatusGatewayTimeout, CodeActionTimeout, orDefault(message, "release action timed out"), err)
}

// ErrInternalError creates a 500 internal error
func ErrInternalError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, orDefault(message, "internal error"), err)
}

// ErrDatabaseError creates a 500 database error
func ErrDatabaseError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeDatabaseError, orDefault(message, "database error"), err)
}

// ErrExternalError creates a 502 external dependency error
func ErrExternalError(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, CodeExternalError, orDefault(message, "external dependency failure"), err)
}
