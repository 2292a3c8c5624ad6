package oauth

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")

	// ErrUnsupportedGrantType is returned when the token endpoint rejects the grant type.
	// Webflow only accepts "authorization_code", so this always means the caller
	// passed something else. It is a programming error and must not be retried.
	// It is deliberately disjoint from ErrIdentityProvider.
	ErrUnsupportedGrantType = errors.New("oauth: grant_type must always be \"authorization_code\"")

	// ErrIdentityProvider matches every *IdentityProviderError via errors.Is.
	ErrIdentityProvider = errors.New("oauth: identity provider error")

	// ErrMissingToken is returned when no access token is supplied.
	ErrMissingToken = errors.New("oauth: missing access token")

	// ErrInvalidParams is returned when token request parameters cannot be sent as given.
	ErrInvalidParams = errors.New("oauth: invalid token request parameters")

	// ErrNilResponse is returned when the OAuth provider returns a nil response.
	ErrNilResponse = errors.New("oauth: nil response from provider")

	// ErrFetchFailed is returned when fetching data from the OAuth provider fails.
	ErrFetchFailed = errors.New("oauth: failed to fetch from provider")

	// ErrExchangeFailed is returned when the token exchange fails without
	// a classifiable upstream response (transport errors, malformed token payloads).
	ErrExchangeFailed = errors.New("oauth: token exchange failed")

	// ErrDecodeFailed is returned when decoding the OAuth provider response fails.
	ErrDecodeFailed = errors.New("oauth: failed to decode response")

	// ErrMalformedUser is returned when the user payload does not carry a "user" object.
	ErrMalformedUser = errors.New("oauth: malformed user payload")
)

// IdentityProviderError describes a failed exchange with Webflow.
// It carries the upstream HTTP status and the raw response body.
type IdentityProviderError struct {
	Message    string
	Body       string
	StatusCode int
}

// Error implements the error interface.
func (e *IdentityProviderError) Error() string {
	return fmt.Sprintf("oauth: webflow: %s (status=%d)", e.Message, e.StatusCode)
}

// Is reports whether target is ErrIdentityProvider.
func (e *IdentityProviderError) Is(target error) bool {
	return target == ErrIdentityProvider
}
