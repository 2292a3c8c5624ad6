package oauth

import (
	"log/slog"
	"net/http"
)

// Option configures an OAuth provider.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// WithHTTPClient sets a custom HTTP client for OAuth requests.
// Timeouts, retries and connection pooling are whatever this client does;
// the provider adds no policy of its own.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the logger used to report classified upstream failures.
// Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
