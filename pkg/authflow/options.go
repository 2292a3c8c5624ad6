package authflow

import (
	"log/slog"
	"time"
)

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithOnSuccess sets the callback invoked after the user is resolved.
// Defaults to writing the user as JSON.
func WithOnSuccess(fn SuccessFunc) Option {
	return func(h *Handler) {
		h.onSuccess = fn
	}
}

// WithCookieName sets the state cookie name. Defaults to "webflow_oauth_state".
func WithCookieName(name string) Option {
	return func(h *Handler) {
		h.state.name = name
	}
}

// WithCookiePath sets the state cookie path. Defaults to "/".
func WithCookiePath(path string) Option {
	return func(h *Handler) {
		h.state.path = path
	}
}

// WithSecureCookie sets the Secure flag on the state cookie.
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) {
		h.state.secure = secure
	}
}

// WithStateTTL sets how long a login attempt stays valid. Defaults to 10 minutes.
func WithStateTTL(ttl time.Duration) Option {
	return func(h *Handler) {
		h.state.ttl = ttl
	}
}
