// Package logs builds the process-wide slog logger.
package logs

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"storefront/config"
	"storefront/internal/errors"

	"go.uber.org/fx"
)

const redacted = "[REDACTED]"

// sensitiveKeys are attribute keys whose values never reach the log sink.
var sensitiveKeys = map[string]bool{
	"password":           true,
	"password_hash":      true,
	"code":               true,
	"otp":                true,
	"token":              true,
	"access_token":       true,
	"refresh_token":      true,
	"id_token":           true,
	"authorization":      true,
	"signature":          true,
	"razorpay_signature": true,
	"key_secret":         true,
}

// Params defines the parameters required for the logger
type Params struct {
	fx.In

	Config *config.Config
}

// New creates the service logger writing to stdout and installs it as the slog default.
func New(params Params) (*slog.Logger, error) {
	logger, err := NewWithWriter(params.Config, os.Stdout)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	return logger, nil
}

// NewWithWriter creates a logger writing to w: text when env.log.pretty is set, JSON
// otherwise. Records carry the service name and environment, and credential-like
// attributes are masked.
func NewWithWriter(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := parseLogLevel(cfg.Env.Log.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: redactSensitive}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if cfg.Env.Log.Pretty {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		slog.String("service", cfg.Env.ServiceName),
		slog.String("env", cfg.Env.Env),
	), nil
}

func redactSensitive(_ []string, attr slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(attr.Key)] && attr.Value.Kind() != slog.KindGroup {
		return slog.String(attr.Key, redacted)
	}

	return attr
}

// parseLogLevel maps env.log.level to a slog level. Empty means info.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Errorf("unknown log level: %s", level)
	}
}
