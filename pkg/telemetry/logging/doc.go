// Package logging provides structured logging on top of log/slog.
//
// Every record passes through a handler that appends request scoped
// fields found in the context (request_id, tenant, and the trace and span
// IDs of the active OpenTelemetry span) and, when enabled, masks secrets
// such as bearer tokens and password query parameters.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//	slog.SetDefault(logger.Slog())
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	ctx = logging.WithTenant(ctx, "demo1")
//	slog.InfoContext(ctx, "forwarding") // includes request_id and tenant
package logging
