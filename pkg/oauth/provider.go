package oauth

import (
	"context"

	"golang.org/x/oauth2"
)

// UserInfo represents provider-agnostic user information
// retrieved from an OAuth provider's user endpoint.
type UserInfo struct {
	ID      string // Provider's unique user identifier
	Email   string
	Name    string
	Picture string
}

// Provider abstracts provider-specific OAuth operations.
// The generic authorization code flow is driven by golang.org/x/oauth2;
// implementations supply endpoints, parameters and response handling.
type Provider interface {
	// Name returns the provider identifier (e.g., "webflow").
	Name() string

	// AuthCodeURL generates the authorization URL for the OAuth flow.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)

	// FetchUserInfo retrieves user information using the access token.
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error)
}

// Revoker is implemented by providers that can revoke issued tokens.
type Revoker interface {
	// RevokeAccessToken reports whether the provider confirmed the revocation.
	RevokeAccessToken(ctx context.Context, token string) (bool, error)
}
