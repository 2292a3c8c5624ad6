package authflow

import "errors"

var (
	// ErrBadSecret is returned when the state signing secret is shorter than 32 bytes.
	ErrBadSecret = errors.New("authflow: secret must be 32+ bytes")

	// ErrMissingState is returned when the callback has no state cookie.
	ErrMissingState = errors.New("authflow: missing state cookie")

	// ErrStateMismatch is returned when the callback state does not match the cookie.
	ErrStateMismatch = errors.New("authflow: state mismatch")

	// ErrMissingCode is returned when the callback has no authorization code.
	ErrMissingCode = errors.New("authflow: missing authorization code")

	// ErrAccessDenied is returned when Webflow redirects back with an error.
	ErrAccessDenied = errors.New("authflow: authorization denied")

	// ErrMissingToken is returned when a revoke request has no bearer token.
	ErrMissingToken = errors.New("authflow: missing bearer token")
)
