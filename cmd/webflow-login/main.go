// Command webflow-login serves the Webflow OAuth login flow.
//
// Configuration comes from the environment:
//
//	WEBFLOW_OAUTH_CLIENT_ID, WEBFLOW_OAUTH_CLIENT_SECRET  application credentials (required)
//	WEBFLOW_OAUTH_REDIRECT_URL                            must point at <prefix>/callback
//	WEBFLOW_OAUTH_SCOPES                                  comma separated scopes
//	STATE_SECRET                                          32+ byte key for the state cookie (required)
//	HTTP_ADDR, HTTP_SHUTDOWN_TIMEOUT, LOG_LEVEL, LOG_FORMAT, SENTRY_DSN, SENTRY_ENVIRONMENT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/webflow-oauth/internal/server"
	"github.com/dmitrymomot/webflow-oauth/pkg/authflow"
	"github.com/dmitrymomot/webflow-oauth/pkg/logger"
	"github.com/dmitrymomot/webflow-oauth/pkg/oauth"
)

const routePrefix = "/auth/webflow"

type config struct {
	Webflow oauth.WebflowConfig
	Log     logger.Config

	Address         string        `env:"HTTP_ADDR" envDefault:":8080"`
	StateSecret     string        `env:"STATE_SECRET,required,unset"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	SecureCookies   bool          `env:"SECURE_COOKIES" envDefault:"true"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	log := logger.New(cfg.Log, authflow.RequestIDExtractor()).With(slog.String("app", "webflow-login"))

	httpClient := &http.Client{Timeout: 15 * time.Second}
	provider, err := oauth.NewWebflowProvider(cfg.Webflow,
		oauth.WithHTTPClient(httpClient),
		oauth.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("webflow provider: %w", err)
	}

	flow, err := authflow.New(provider, cfg.StateSecret,
		authflow.WithLogger(log),
		authflow.WithCookiePath(routePrefix),
		authflow.WithSecureCookie(cfg.SecureCookies),
	)
	if err != nil {
		return fmt.Errorf("auth flow: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, routePrefix+"/login", http.StatusFound)
	})
	r.Mount(routePrefix, flow.Routes())

	return server.Run(ctx, server.Config{
		Handler:         r,
		Logger:          log,
		Address:         cfg.Address,
		ShutdownTimeout: cfg.ShutdownTimeout,
		OnShutdown:      []server.ShutdownHook{server.CloseIdleConnections(httpClient)},
	})
}
