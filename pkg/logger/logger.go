// Package logger provides the application's slog-based logging setup.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.uber.org/fx"
)

// Module provides the application logger
var Module = fx.Module("logger",
	fx.Provide(
		NewLogger,
		NewHTTPLogger,
	),
)

// Scope returns a slog attribute identifying the logging component.
// Scopes are dot-separated, e.g. "ontology.svc" or "scheduler".
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// Error returns a slog attribute for an error value.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// NewLogger creates the root logger. Level comes from LOG_LEVEL
// (debug|info|warn|error, default info); output is JSON unless GO_ENV=local,
// which switches to the text handler for readability.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("GO_ENV") == "local" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// HTTPLogger writes one structured line per HTTP request to a dedicated
// log destination, separate from the application log stream.
type HTTPLogger struct {
	log *slog.Logger
}

// NewHTTPLogger creates the HTTP request logger. When HTTP_LOG_FILE is set
// the log is appended there; otherwise requests go to stdout alongside the
// application log.
func NewHTTPLogger() (*HTTPLogger, error) {
	var w io.Writer = os.Stdout
	if path := os.Getenv("HTTP_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		w = f
	}

	return &HTTPLogger{
		log: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}, nil
}

// LogRequest records a single completed HTTP request.
func (h *HTTPLogger) LogRequest(ip, method, uri string, status int, latency time.Duration, userAgent, requestID string) {
	h.log.Info("http",
		slog.String("ip", ip),
		slog.String("method", method),
		slog.String("uri", uri),
		slog.Int("status", status),
		slog.Duration("latency", latency),
		slog.String("user_agent", userAgent),
		slog.String("request_id", requestID),
	)
}
