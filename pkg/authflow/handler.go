package authflow

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/webflow-oauth/pkg/logger"
	"github.com/dmitrymomot/webflow-oauth/pkg/oauth"
)

const (
	defaultCookieName = "webflow_oauth_state"
	defaultStateTTL   = 10 * time.Minute
	minSecretLength   = 32
)

// Authenticator is the part of *oauth.WebflowProvider the handler drives.
type Authenticator interface {
	AuthorizationURL(opts ...oauth2.AuthCodeOption) (authURL, state string)
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)
	ResourceOwner(ctx context.Context, token *oauth2.Token) (*oauth.ResourceOwner, error)
	RevokeAccessToken(ctx context.Context, token string) (bool, error)
}

// SuccessFunc receives the authenticated user at the end of the callback.
// The caller owns the token from here on.
type SuccessFunc func(w http.ResponseWriter, r *http.Request, owner *oauth.ResourceOwner, token *oauth2.Token) error

// Handler serves the login, callback and revoke endpoints.
type Handler struct {
	provider  Authenticator
	onSuccess SuccessFunc
	logger    *slog.Logger
	state     *stateCookie
}

// New creates a Handler. secret signs the state cookie and must be at least 32 bytes.
func New(provider Authenticator, secret string, opts ...Option) (*Handler, error) {
	if len(secret) < minSecretLength {
		return nil, ErrBadSecret
	}

	h := &Handler{
		provider:  provider,
		onSuccess: writeOwner,
		logger:    logger.NewNope(),
		state: &stateCookie{
			secret: []byte(secret),
			name:   defaultCookieName,
			path:   "/",
			ttl:    defaultStateTTL,
		},
	}
	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

// Routes returns a router with GET /login, GET /callback and POST /revoke.
// Mount it under any prefix.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Get("/login", h.Login)
	r.Get("/callback", h.Callback)
	r.Post("/revoke", h.Revoke)
	return r
}

// Login stores a fresh state and redirects the user to Webflow.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	authURL, state := h.provider.AuthorizationURL()
	h.state.set(w, state)

	h.logger.DebugContext(r.Context(), "redirecting to webflow")
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback validates the state, exchanges the code and resolves the user.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	expected, err := h.state.pop(w, r)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(query.Get("state"))) != 1 {
		h.fail(w, r, http.StatusBadRequest, ErrStateMismatch)
		return
	}

	if e := query.Get("error"); e != "" {
		h.fail(w, r, http.StatusUnauthorized, errors.Join(ErrAccessDenied, errors.New(e)))
		return
	}

	code := query.Get("code")
	if code == "" {
		h.fail(w, r, http.StatusBadRequest, ErrMissingCode)
		return
	}

	token, err := h.provider.Exchange(ctx, code, "")
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}

	owner, err := h.provider.ResourceOwner(ctx, token)
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}

	h.logger.InfoContext(ctx, "webflow user authenticated", slog.String("user_id", owner.ID()))

	if err := h.onSuccess(w, r, owner, token); err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
	}
}

// Revoke revokes the bearer token of the request and reports the outcome.
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		h.fail(w, r, http.StatusUnauthorized, ErrMissingToken)
		return
	}

	revoked, err := h.provider.RevokeAccessToken(r.Context(), token)
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"revoked": revoked})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "webflow oauth failed",
		slog.Int("status", status),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)

	writeJSON(w, status, map[string]string{"error": publicMessage(err, status)})
}

// statusFor maps provider errors to HTTP statuses.
func statusFor(err error) int {
	var idpErr *oauth.IdentityProviderError
	switch {
	case errors.Is(err, oauth.ErrUnsupportedGrantType):
		return http.StatusInternalServerError
	case errors.As(err, &idpErr) && idpErr.Message == oauth.MsgInvalidGrant:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// publicMessage hides upstream bodies and internal detail from clients.
func publicMessage(err error, status int) string {
	var idpErr *oauth.IdentityProviderError
	switch {
	case errors.As(err, &idpErr):
		return idpErr.Message
	case errors.Is(err, ErrAccessDenied):
		return ErrAccessDenied.Error()
	case errors.Is(err, ErrMissingState), errors.Is(err, ErrStateMismatch),
		errors.Is(err, ErrMissingCode), errors.Is(err, ErrMissingToken):
		return err.Error()
	default:
		return http.StatusText(status)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func writeOwner(w http.ResponseWriter, _ *http.Request, owner *oauth.ResourceOwner, _ *oauth2.Token) error {
	writeJSON(w, http.StatusOK, owner)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
