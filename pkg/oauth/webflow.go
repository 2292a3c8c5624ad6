package oauth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/webflow-oauth/pkg/logger"
)

const (
	// WebflowProviderName is the identifier for Webflow OAuth provider.
	WebflowProviderName = "webflow"

	// WebflowAuthBaseURL hosts the user-facing authorization page.
	// It is the only endpoint served from the main site.
	WebflowAuthBaseURL = "https://webflow.com"

	// WebflowAPIBaseURL hosts every other OAuth and API endpoint.
	WebflowAPIBaseURL = "https://api.webflow.com"

	// FlowType is the only grant type Webflow supports.
	FlowType = "authorization_code"

	webflowAuthorizePath    = "/oauth/authorize"
	webflowAccessTokenPath  = "/oauth/access_token"
	webflowUserPath         = "/user"
	webflowRevokePath       = "/oauth/revoke_authorization"
	webflowScopeSeparator   = " "
	webflowMaxResponseBytes = 1 << 20
)

// WebflowProvider implements Provider for Webflow OAuth.
type WebflowProvider struct {
	config     *oauth2.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebflowProvider creates a new Webflow OAuth provider.
// Returns an error if ClientID or ClientSecret is empty.
func NewWebflowProvider(cfg WebflowConfig, opts ...Option) (*WebflowProvider, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewNope()
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = WebflowDefaultScopes()
	}

	p := &WebflowProvider{
		httpClient: o.httpClient,
		logger:     o.logger.With(slog.String("provider", WebflowProviderName)),
	}
	p.config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.AuthorizationBaseURL(),
			TokenURL:  p.AccessTokenURL(nil),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	return p, nil
}

// WebflowDefaultScopes returns the default scopes for Webflow OAuth.
// None are needed to complete the flow; callers request what they need.
func WebflowDefaultScopes() []string {
	return []string{}
}

// Name returns the provider identifier.
func (p *WebflowProvider) Name() string {
	return WebflowProviderName
}

// DefaultScopes returns the scopes used when the config lists none.
func (p *WebflowProvider) DefaultScopes() []string {
	return WebflowDefaultScopes()
}

// ScopeSeparator returns the separator used to serialize scopes.
func (p *WebflowProvider) ScopeSeparator() string {
	return webflowScopeSeparator
}

// AuthorizationBaseURL returns the authorization endpoint on the web host.
func (p *WebflowProvider) AuthorizationBaseURL() string {
	return buildURL(webflowAuthorizePath)
}

// AccessTokenURL returns the token endpoint. Params travel in the request body.
func (p *WebflowProvider) AccessTokenURL(_ url.Values) string {
	return buildURL(webflowAccessTokenPath)
}

// ResourceOwnerDetailsURL returns the current user endpoint.
// The token authenticates the request via the Authorization header, not the URL.
func (p *WebflowProvider) ResourceOwnerDetailsURL(_ *oauth2.Token) string {
	return buildURL(webflowUserPath)
}

// RevokeURL returns the authorization revocation endpoint.
func (p *WebflowProvider) RevokeURL() string {
	return buildURL(webflowRevokePath)
}

// AuthorizationParameters appends type=authorization_code to opts.
// It goes last so it overrides any caller-supplied "type".
func (p *WebflowProvider) AuthorizationParameters(opts ...oauth2.AuthCodeOption) []oauth2.AuthCodeOption {
	params := make([]oauth2.AuthCodeOption, 0, len(opts)+1)
	params = append(params, opts...)
	return append(params, oauth2.SetAuthURLParam("type", FlowType))
}

// AuthCodeURL generates the authorization URL.
func (p *WebflowProvider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.config.AuthCodeURL(state, p.AuthorizationParameters(opts...)...)
}

// AuthorizationURL generates the authorization URL with a fresh random state.
// The caller must persist the returned state and compare it on callback.
func (p *WebflowProvider) AuthorizationURL(opts ...oauth2.AuthCodeOption) (authURL, state string) {
	state = rand.Text()
	return p.AuthCodeURL(state, opts...), state
}

// Exchange trades an authorization code for tokens.
func (p *WebflowProvider) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	return p.exchange(ctx, p.configFor(redirectURI), code)
}

// AccessToken requests a token with an explicit grant type and parameters.
// Webflow only accepts FlowType; any other value is sent as-is and comes back
// as ErrUnsupportedGrantType. Each parameter must carry a single value;
// multi-valued keys are rejected with ErrInvalidParams before any request is sent.
func (p *WebflowProvider) AccessToken(ctx context.Context, grantType string, params url.Values) (*oauth2.Token, error) {
	var opts []oauth2.AuthCodeOption
	for key, values := range params {
		if len(values) > 1 {
			return nil, errors.Join(ErrInvalidParams, fmt.Errorf("parameter %q has %d values", key, len(values)))
		}
		if key == "code" || key == "grant_type" || len(values) == 0 {
			continue
		}
		opts = append(opts, oauth2.SetAuthURLParam(key, values[0]))
	}
	if grantType != FlowType {
		opts = append(opts, oauth2.SetAuthURLParam("grant_type", grantType))
	}

	return p.exchange(ctx, p.config, params.Get("code"), opts...)
}

// FetchUserInfo retrieves user information from Webflow.
func (p *WebflowProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	owner, err := p.ResourceOwner(ctx, token)
	if err != nil {
		return nil, err
	}

	return &UserInfo{
		ID:    owner.ID(),
		Email: owner.Email(),
		Name:  strings.TrimSpace(owner.FirstName() + " " + owner.LastName()),
	}, nil
}

// ResourceOwner fetches the user the token was issued for.
// It sends exactly one bearer GET; expiry is not checked and the token is never refreshed.
func (p *WebflowProvider) ResourceOwner(ctx context.Context, token *oauth2.Token) (*ResourceOwner, error) {
	if token == nil || token.AccessToken == "" {
		return nil, ErrMissingToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ResourceOwnerDetailsURL(token), nil)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("build user request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	token.SetAuthHeader(req)

	status, body, err := p.do(p.client(), req)
	if err != nil {
		return nil, err
	}
	if err := p.checkResponse(ctx, "user", status, body); err != nil {
		return nil, err
	}

	return NewResourceOwner(body)
}

// RevokeAccessToken revokes the given access token.
// Returns true only when Webflow answers with a truthy "did_revoke".
// Any other successful payload yields false without an error.
func (p *WebflowProvider) RevokeAccessToken(ctx context.Context, token string) (bool, error) {
	form := url.Values{
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"access_token":  {token},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.RevokeURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return false, errors.Join(ErrFetchFailed, fmt.Errorf("build revoke request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := p.do(p.client(), req)
	if err != nil {
		return false, err
	}
	if err := p.checkResponse(ctx, "revoke", status, body); err != nil {
		return false, err
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		p.logger.DebugContext(ctx, "undecodable revoke response", slog.String("error", err.Error()))
		return false, nil
	}

	return truthy(data["did_revoke"]), nil
}

func (p *WebflowProvider) exchange(ctx context.Context, cfg *oauth2.Config, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	ctx = p.contextWithHTTPClient(ctx)

	token, err := cfg.Exchange(ctx, code, opts...)
	if err == nil {
		return token, nil
	}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		if cerr := p.checkResponse(ctx, "token", re.Response.StatusCode, re.Body); cerr != nil {
			return nil, cerr
		}
	}

	return nil, errors.Join(ErrExchangeFailed, err)
}

func (p *WebflowProvider) checkResponse(ctx context.Context, op string, status int, body []byte) error {
	err := CheckResponse(status, body)
	if err != nil {
		p.logger.WarnContext(ctx, "webflow request rejected",
			slog.String("operation", op),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	return err
}

func (p *WebflowProvider) do(client *http.Client, req *http.Request) (int, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, errors.Join(ErrFetchFailed, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	if resp == nil {
		return 0, nil, errors.Join(ErrNilResponse, fmt.Errorf("unexpected nil response from webflow %s", req.URL.Path))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, webflowMaxResponseBytes))
	if err != nil {
		return 0, nil, errors.Join(ErrFetchFailed, fmt.Errorf("read %s: %w", req.URL.Path, err))
	}

	return resp.StatusCode, body, nil
}

func (p *WebflowProvider) configFor(redirectURI string) *oauth2.Config {
	if redirectURI == "" {
		return p.config
	}
	return &oauth2.Config{
		ClientID:     p.config.ClientID,
		ClientSecret: p.config.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       p.config.Scopes,
		Endpoint:     p.config.Endpoint,
	}
}

func (p *WebflowProvider) client() *http.Client {
	if p.httpClient != nil {
		return p.httpClient
	}
	return http.DefaultClient
}

func (p *WebflowProvider) contextWithHTTPClient(ctx context.Context) context.Context {
	if p.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	return ctx
}

// buildURL resolves endpoint against the host that serves it.
func buildURL(endpoint string) string {
	base := WebflowAPIBaseURL
	if endpoint == webflowAuthorizePath {
		base = WebflowAuthBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}
