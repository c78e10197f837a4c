package http

import (
	"errors"
	"net/http"

	"social-hub/domain/model"
)

// statusFor maps domain errors onto HTTP status codes. Anything unrecognized
// is an internal failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrAuthenticationRequired),
		errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidRequest),
		errors.Is(err, model.ErrUnsupportedPlatform),
		errors.Is(err, model.ErrStateMismatch),
		errors.Is(err, model.ErrStateExpired),
		errors.Is(err, model.ErrNotConnected):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrTokenExchangeFailed),
		errors.Is(err, model.ErrExternalCallFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
