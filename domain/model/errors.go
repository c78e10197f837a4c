package model

import "errors"

// Sentinel errors shared across usecases. Handlers map these to HTTP status
// codes with errors.Is; anything unrecognized becomes a 500.
var (
	// ErrAuthenticationRequired means no credential was presented at all.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrUnauthorized means a credential was presented but could not be verified.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller is authenticated but does not own the resource.
	ErrForbidden = errors.New("forbidden")

	ErrNotFound            = errors.New("not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// OAuth connect flow failures. State problems are treated as potential CSRF
	// and must reject the flow before any call to the platform.
	ErrStateMismatch       = errors.New("oauth state mismatch")
	ErrStateExpired        = errors.New("oauth state missing or expired")
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// ErrNotConnected means the user has no stored connection for the platform.
	ErrNotConnected = errors.New("platform not connected")
	// ErrExternalCallFailed wraps timeouts and errors from platform adapters.
	ErrExternalCallFailed = errors.New("external platform call failed")
)
