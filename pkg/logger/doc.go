// Package logger builds the structured slog loggers used across the module.
//
// Loggers write JSON (or text) to stdout, inject request-scoped attributes through
// ContextExtractor functions, and optionally forward warnings and errors to Sentry.
// An empty Sentry DSN disables forwarding, so the same setup works locally.
//
//	log := logger.New(logger.Config{Level: "debug"}, authflow.RequestIDExtractor())
//	log.InfoContext(ctx, "user signed in", slog.String("provider", "webflow"))
//
// NewNope returns a logger that discards everything; library code uses it when
// no logger is configured.
package logger
