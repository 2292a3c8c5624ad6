// Package oauth provides the OAuth2 authorization code flow for Webflow.
//
// The generic flow (authorization URL, code exchange, bearer client) is driven by
// golang.org/x/oauth2. WebflowProvider supplies what is specific to Webflow: its
// endpoints, the forced "type" authorization parameter, error classification and
// the mapping of the user payload to a ResourceOwner.
//
// # Endpoints
//
// Webflow serves authorization from its main site and everything else from the API host:
//
//	https://webflow.com/oauth/authorize
//	https://api.webflow.com/oauth/access_token
//	https://api.webflow.com/user
//	https://api.webflow.com/oauth/revoke_authorization
//
// # Usage
//
//	provider, err := oauth.NewWebflowProvider(oauth.WebflowConfig{
//		ClientID:     os.Getenv("WEBFLOW_OAUTH_CLIENT_ID"),
//		ClientSecret: os.Getenv("WEBFLOW_OAUTH_CLIENT_SECRET"),
//		RedirectURL:  "https://example.com/auth/webflow/callback",
//		Scopes:       []string{"authorized_user:read"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Generate authorization URL and remember the state
//	url, state := provider.AuthorizationURL()
//
//	// Exchange code for token (in callback handler)
//	token, err := provider.Exchange(ctx, code, "")
//	if err != nil {
//		// handle error
//	}
//
//	// Fetch the authorized user
//	owner, err := provider.ResourceOwner(ctx, token)
//
//	// Revoke when the user disconnects
//	revoked, err := provider.RevokeAccessToken(ctx, token.AccessToken)
//
// # Error Handling
//
// Failed token, user and revoke requests are classified into two disjoint kinds:
//
//   - ErrUnsupportedGrantType: the grant type was not "authorization_code". This is a
//     caller bug; do not retry.
//   - *IdentityProviderError: everything else Webflow rejects. It carries a message, the
//     HTTP status and the raw body, and matches ErrIdentityProvider.
//
// Inspect the message to tell recognized failures apart:
//
//	var idpErr *oauth.IdentityProviderError
//	if errors.As(err, &idpErr) && idpErr.Message == oauth.MsgInvalidGrant {
//		// restart the flow
//	}
//
// Transport failures are reported with ErrFetchFailed, ErrNilResponse, ErrExchangeFailed
// or ErrDecodeFailed. Bad input is rejected locally with ErrMissingToken or ErrInvalidParams.
//
// # Testing
//
// Use WithHTTPClient to route requests to a test handler:
//
//	provider, err := oauth.NewWebflowProvider(cfg, oauth.WithHTTPClient(ts.Client()))
package oauth
