package cma

import (
	"encoding/json"
	"fmt"
)

// Well-known CMA error ids (sys.id of an error response)
const (
	ErrIDValidationFailed = "ValidationFailed"
	ErrIDVersionMismatch  = "VersionMismatch"
	ErrIDNotFound         = "NotFound"
)

// ErrorDetail is one entry of details.errors in a CMA error response
type ErrorDetail struct {
	Name    string        `json:"name"`
	Path    []interface{} `json:"path"`
	Details string        `json:"details"`
	Max     int           `json:"max,omitempty"`
}

// APIError is a non-2xx response from the CMA
type APIError struct {
	Status    int
	SysID     string
	Message   string
	RequestID string
	Details   []ErrorDetail
}

func (e *APIError) Error() string {
	if e.SysID != "" {
		return fmt.Sprintf("cma request failed (%d %s): %s", e.Status, e.SysID, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("cma request failed with status %d", e.Status)
	}
	return fmt.Sprintf("cma request failed (%d): %s", e.Status, e.Message)
}

// HasDetail reports whether any detail has the given validation name and,
// when field is non-empty, a path starting with field
func (e *APIError) HasDetail(name, field string) bool {
	for _, d := range e.Details {
		if d.Name != name {
			continue
		}
		if field == "" {
			return true
		}
		if len(d.Path) > 0 {
			if first, ok := d.Path[0].(string); ok && first == field {
				return true
			}
		}
	}
	return false
}

// parseError builds an APIError from a response status and body
func parseError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = truncate(string(body), 255)
		return apiErr
	}

	apiErr.SysID = eb.Sys.ID
	apiErr.Message = eb.Message
	apiErr.RequestID = eb.RequestID

	if len(eb.Details) > 0 {
		var details struct {
			Errors []ErrorDetail `json:"errors"`
		}
		if err := json.Unmarshal(eb.Details, &details); err == nil {
			apiErr.Details = details.Errors
		}
	}
	return apiErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
