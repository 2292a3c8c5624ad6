// Package server runs an HTTP handler with graceful shutdown.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/webflow-oauth/pkg/logger"
)

const (
	defaultAddress           = ":8080"
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
)

// ErrNoHandler is returned by Run when Config.Handler is nil.
var ErrNoHandler = errors.New("server: handler is required")

// ShutdownHook releases a resource once the server stopped accepting requests.
type ShutdownHook func(ctx context.Context) error

// Config holds server configuration.
type Config struct {
	Handler         http.Handler
	Logger          *slog.Logger
	Address         string
	ShutdownTimeout time.Duration
	// OnShutdown runs in order after in-flight requests drained,
	// sharing the ShutdownTimeout budget.
	OnShutdown []ShutdownHook
}

// CloseIdleConnections returns a hook that drops pooled upstream connections of client.
func CloseIdleConnections(client *http.Client) ShutdownHook {
	return func(context.Context) error {
		client.CloseIdleConnections()
		return nil
	}
}

// Run serves cfg.Handler and blocks until ctx is done, SIGINT/SIGTERM arrives,
// or the listener fails. Request contexts inherit ctx values but not its cancellation.
// onListen, if set, receives the bound address.
func Run(ctx context.Context, cfg Config, onListen ...func(net.Addr)) error {
	if cfg.Handler == nil {
		return ErrNoHandler
	}
	if cfg.Address == "" {
		cfg.Address = defaultAddress
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNope()
	}

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return err
	}
	for _, fn := range onListen {
		fn(ln.Addr())
	}

	baseCtx := context.WithoutCancel(ctx)
	srv := &http.Server{
		Handler:           cfg.Handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		// Serve only returns early on listener failure.
		return errors.Join(err, runHooks(cfg, log))
	case <-stopCtx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		errs = append(errs, err)
	}
	errs = append(errs, runHooksCtx(shutdownCtx, cfg, log))

	if err := errors.Join(errs...); err != nil {
		log.Error("shutdown completed with errors", slog.String("error", err.Error()))
		return err
	}

	log.Info("shutdown completed")
	return nil
}

func runHooks(cfg Config, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return runHooksCtx(ctx, cfg, log)
}

func runHooksCtx(ctx context.Context, cfg Config, log *slog.Logger) error {
	var errs []error
	for _, hook := range cfg.OnShutdown {
		if err := hook(ctx); err != nil {
			log.Error("shutdown hook failed", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
