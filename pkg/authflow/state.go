package authflow

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

// stateCookie keeps the OAuth state in an HMAC-signed cookie between
// the login redirect and the callback.
type stateCookie struct {
	secret []byte
	name   string
	path   string
	ttl    time.Duration
	secure bool
}

func (s *stateCookie) set(w http.ResponseWriter, state string) {
	// Format: base64(state).base64(signature)
	value := base64.RawURLEncoding.EncodeToString([]byte(state)) +
		"." + base64.RawURLEncoding.EncodeToString(s.sign([]byte(state)))

	http.SetCookie(w, s.cookie(value, int(s.ttl.Seconds())))
}

// pop returns the signed state and clears the cookie.
func (s *stateCookie) pop(w http.ResponseWriter, r *http.Request) (string, error) {
	c, err := r.Cookie(s.name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrMissingState
		}
		return "", err
	}
	http.SetCookie(w, s.cookie("", -1))

	parts := strings.SplitN(c.Value, ".", 2)
	if len(parts) != 2 {
		return "", ErrStateMismatch
	}
	state, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrStateMismatch
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrStateMismatch
	}
	if !hmac.Equal(sig, s.sign(state)) {
		return "", ErrStateMismatch
	}

	return string(state), nil
}

func (s *stateCookie) sign(value []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(value)
	return mac.Sum(nil)
}

func (s *stateCookie) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     s.path,
		MaxAge:   maxAge,
		Secure:   s.secure,
		HttpOnly: true,
		// Lax so the cookie survives the top-level redirect back from Webflow.
		SameSite: http.SameSiteLaxMode,
	}
}
