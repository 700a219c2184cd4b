package releases

import (
	"errors"

	"go_releasehub/internal/httpx"
	"go_releasehub/internal/release"

	"github.com/gin-gonic/gin"
)

// failRelease maps a release workflow or CMA error to the response envelope
func failRelease(c *gin.Context, err error, message string) {
	httpx.FailErr(c, toAppError(err, message))
}

func toAppError(err error, message string) *httpx.AppError {
	switch {
	case errors.Is(err, release.ErrActionInProgress):
		return httpx.ErrStateConflict(err.Error())
	case errors.Is(err, release.ErrReleaseNotLoaded):
		return httpx.ErrStateConflict(err.Error())
	case errors.Is(err, release.ErrValidationFailed):
		return httpx.ErrValidationFailed("some entities failed validation", err)
	}

	switch release.Classify(err) {
	case release.KindInvalid:
		return httpx.ErrParamInvalid(err.Error())
	case release.KindNotFound:
		return httpx.ErrNotFound("release not found")
	case release.KindVersionConflict:
		return httpx.ErrVersionConflict("", err)
	case release.KindEntityLimit:
		return httpx.ErrEntityLimit("", err)
	case release.KindValidation:
		return httpx.ErrValidationFailed("", err)
	case release.KindActionFailed:
		return httpx.ErrActionFailed(message, err)
	case release.KindTimeout:
		return httpx.ErrActionTimeout(message, err)
	default:
		return httpx.ErrExternalError(message, err)
	}
}
