package authflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/webflow-oauth/pkg/authflow"
	"github.com/dmitrymomot/webflow-oauth/pkg/oauth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var _ authflow.Authenticator = (*oauth.WebflowProvider)(nil)

type fakeProvider struct {
	exchangeErr error
	ownerErr    error
	revokeErr   error
	state       string
	gotCode     string
	gotRevoke   string
	revoked     bool
}

func (f *fakeProvider) AuthorizationURL(_ ...oauth2.AuthCodeOption) (string, string) {
	return "https://webflow.com/oauth/authorize?state=" + f.state, f.state
}

func (f *fakeProvider) Exchange(_ context.Context, code, _ string) (*oauth2.Token, error) {
	f.gotCode = code
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "T", TokenType: "bearer"}, nil
}

func (f *fakeProvider) ResourceOwner(_ context.Context, _ *oauth2.Token) (*oauth.ResourceOwner, error) {
	if f.ownerErr != nil {
		return nil, f.ownerErr
	}
	return oauth.NewResourceOwner([]byte(`{"user":{"_id":"1","email":"a@b.com","firstName":"A","lastName":"B"}}`))
}

func (f *fakeProvider) RevokeAccessToken(_ context.Context, token string) (bool, error) {
	f.gotRevoke = token
	return f.revoked, f.revokeErr
}

func newHandler(t *testing.T, p authflow.Authenticator, opts ...authflow.Option) http.Handler {
	t.Helper()
	h, err := authflow.New(p, testSecret, opts...)
	require.NoError(t, err)
	return h.Routes()
}

// login runs GET /login and returns the state cookie it set.
func login(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func callback(h http.Handler, cookie *http.Cookie, query url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/callback?"+query.Encode(), nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestNew(t *testing.T) {
	t.Parallel()

	h, err := authflow.New(&fakeProvider{}, "too-short")
	require.ErrorIs(t, err, authflow.ErrBadSecret)
	require.Nil(t, h)
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()

	h := newHandler(t, &fakeProvider{state: "abc"}, authflow.WithCookieName("wf_state"), authflow.WithSecureCookie(true))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://webflow.com/oauth/authorize?state=abc", rec.Header().Get("Location"))
	require.NotEmpty(t, rec.Header().Get(authflow.RequestIDHeader))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "wf_state", cookies[0].Name)
	require.True(t, cookies[0].Secure)
	require.True(t, cookies[0].HttpOnly)
}

func TestHandler_Callback(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		p := &fakeProvider{state: "abc"}
		h := newHandler(t, p)

		rec := callback(h, login(t, h), url.Values{"state": {"abc"}, "code": {"the-code"}})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "the-code", p.gotCode)
		require.JSONEq(t, `{"_id":"1","email":"a@b.com","firstName":"A","lastName":"B"}`, rec.Body.String())

		// State cookie is cleared.
		cleared := rec.Result().Cookies()
		require.Len(t, cleared, 1)
		require.Negative(t, cleared[0].MaxAge)
	})

	t.Run("custom success handler", func(t *testing.T) {
		t.Parallel()
		var gotOwner *oauth.ResourceOwner
		var gotToken *oauth2.Token
		h := newHandler(t, &fakeProvider{state: "abc"}, authflow.WithOnSuccess(
			func(w http.ResponseWriter, r *http.Request, owner *oauth.ResourceOwner, token *oauth2.Token) error {
				gotOwner, gotToken = owner, token
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return nil
			},
		))

		rec := callback(h, login(t, h), url.Values{"state": {"abc"}, "code": {"c"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "1", gotOwner.ID())
		require.Equal(t, "T", gotToken.AccessToken)
	})

	t.Run("success handler error", func(t *testing.T) {
		t.Parallel()
		h := newHandler(t, &fakeProvider{state: "abc"}, authflow.WithOnSuccess(
			func(http.ResponseWriter, *http.Request, *oauth.ResourceOwner, *oauth2.Token) error {
				return errors.New("session store down")
			},
		))

		rec := callback(h, login(t, h), url.Values{"state": {"abc"}, "code": {"c"}})
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.NotContains(t, rec.Body.String(), "session store")
	})

	t.Run("missing state cookie", func(t *testing.T) {
		t.Parallel()
		h := newHandler(t, &fakeProvider{state: "abc"})

		rec := callback(h, nil, url.Values{"state": {"abc"}, "code": {"c"}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, authflow.ErrMissingState.Error(), decodeError(t, rec))
	})

	t.Run("state mismatch", func(t *testing.T) {
		t.Parallel()
		p := &fakeProvider{state: "abc"}
		h := newHandler(t, p)

		rec := callback(h, login(t, h), url.Values{"state": {"other"}, "code": {"c"}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, authflow.ErrStateMismatch.Error(), decodeError(t, rec))
		require.Empty(t, p.gotCode)
	})

	t.Run("tampered cookie", func(t *testing.T) {
		t.Parallel()
		h := newHandler(t, &fakeProvider{state: "abc"})

		cookie := login(t, h)
		sig := cookie.Value[strings.Index(cookie.Value, "."):]
		cookie.Value = "b3RoZXI" + sig // base64("other")

		rec := callback(h, cookie, url.Values{"state": {"other"}, "code": {"c"}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, authflow.ErrStateMismatch.Error(), decodeError(t, rec))
	})

	t.Run("access denied", func(t *testing.T) {
		t.Parallel()
		h := newHandler(t, &fakeProvider{state: "abc"})

		rec := callback(h, login(t, h), url.Values{"state": {"abc"}, "error": {"access_denied"}})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, authflow.ErrAccessDenied.Error(), decodeError(t, rec))
	})

	t.Run("missing code", func(t *testing.T) {
		t.Parallel()
		h := newHandler(t, &fakeProvider{state: "abc"})

		rec := callback(h, login(t, h), url.Values{"state": {"abc"}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, authflow.ErrMissingCode.Error(), decodeError(t, rec))
	})

	tests := []struct {
		err     error
		name    string
		message string
		status  int
	}{
		{
			name:    "invalid code",
			err:     &oauth.IdentityProviderError{Message: oauth.MsgInvalidGrant, StatusCode: 400, Body: `{"error":"invalid_grant"}`},
			status:  http.StatusBadRequest,
			message: oauth.MsgInvalidGrant,
		},
		{
			name:    "invalid client",
			err:     &oauth.IdentityProviderError{Message: oauth.MsgInvalidClient, StatusCode: 401, Body: `{"error":"invalid_client"}`},
			status:  http.StatusBadGateway,
			message: oauth.MsgInvalidClient,
		},
		{
			name:    "grant type misuse",
			err:     oauth.ErrUnsupportedGrantType,
			status:  http.StatusInternalServerError,
			message: http.StatusText(http.StatusInternalServerError),
		},
		{
			name:    "transport failure",
			err:     errors.Join(oauth.ErrExchangeFailed, errors.New("dial tcp: refused")),
			status:  http.StatusBadGateway,
			message: http.StatusText(http.StatusBadGateway),
		},
	}

	for _, tt := range tests {
		t.Run("exchange "+tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHandler(t, &fakeProvider{state: "abc", exchangeErr: tt.err})

			rec := callback(h, login(t, h), url.Values{"state": {"abc"}, "code": {"c"}})
			require.Equal(t, tt.status, rec.Code)
			require.Equal(t, tt.message, decodeError(t, rec))
		})
	}

	t.Run("user fetch failure", func(t *testing.T) {
		t.Parallel()
		h := newHandler(t, &fakeProvider{state: "abc", ownerErr: oauth.ErrMalformedUser})

		rec := callback(h, login(t, h), url.Values{"state": {"abc"}, "code": {"c"}})
		require.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandler_Revoke(t *testing.T) {
	t.Parallel()

	revoke := func(h http.Handler, auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/revoke", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("revoked", func(t *testing.T) {
		t.Parallel()
		p := &fakeProvider{revoked: true}
		rec := revoke(newHandler(t, p), "Bearer tok")

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"revoked":true}`, rec.Body.String())
		require.Equal(t, "tok", p.gotRevoke)
	})

	t.Run("declined", func(t *testing.T) {
		t.Parallel()
		rec := revoke(newHandler(t, &fakeProvider{}), "bearer tok")

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"revoked":false}`, rec.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		rec := revoke(newHandler(t, &fakeProvider{}), "Basic abc")

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, authflow.ErrMissingToken.Error(), decodeError(t, rec))
	})

	t.Run("provider error", func(t *testing.T) {
		t.Parallel()
		p := &fakeProvider{revokeErr: &oauth.IdentityProviderError{Message: oauth.MsgUnexpectedResponse, StatusCode: 500}}
		rec := revoke(newHandler(t, p), "Bearer tok")

		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.Equal(t, oauth.MsgUnexpectedResponse, decodeError(t, rec))
	})

	t.Run("wrong method", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		newHandler(t, &fakeProvider{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/revoke", nil))
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
