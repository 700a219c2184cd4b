package release

import (
	"errors"
	"net/http"

	"go_releasehub/internal/cma"
	"go_releasehub/internal/model"
)

var (
	// ErrActionTimeout is returned when a release action is still running
	// after the last allowed poll.
	ErrActionTimeout = errors.New("release action did not finish in time")
	// ErrActionInProgress is returned when another workflow action is running
	// on the same release.
	ErrActionInProgress = errors.New("another release action is in progress")
	// ErrValidationFailed aborts a publication whose validation listed errors.
	ErrValidationFailed = errors.New("release validation failed")
	ErrReleaseNotLoaded = errors.New("release not loaded")
	// ErrInvalidParams wraps input errors detected before any CMA call
	ErrInvalidParams = errors.New("invalid parameters")
)

// ActionFailedError carries the failed action so callers can tell a failed
// release action apart from a failed request.
type ActionFailedError struct {
	Action *model.ReleaseAction
}

func (e *ActionFailedError) Error() string {
	return "release action " + e.Action.ID + " failed"
}

// ErrorKind 错误分类
type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindEntityLimit
	KindVersionConflict
	KindValidation
	KindNotFound
	KindActionFailed
	KindTimeout
	KindInvalid
)

// Classify maps an error from the CMA or the poller to a kind the HTTP layer
// and notifications can distinguish.
func Classify(err error) ErrorKind {
	var failed *ActionFailedError
	if errors.As(err, &failed) {
		return KindActionFailed
	}
	if errors.Is(err, ErrActionTimeout) {
		return KindTimeout
	}
	if errors.Is(err, ErrInvalidParams) {
		return KindInvalid
	}

	var apiErr *cma.APIError
	if !errors.As(err, &apiErr) {
		return KindTransport
	}
	switch {
	case apiErr.Status == http.StatusNotFound:
		return KindNotFound
	case apiErr.Status == http.StatusConflict || apiErr.SysID == cma.ErrIDVersionMismatch:
		return KindVersionConflict
	case apiErr.Status == http.StatusUnprocessableEntity && apiErr.HasDetail("size", "entities"):
		return KindEntityLimit
	case apiErr.Status == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindTransport
	}
}
