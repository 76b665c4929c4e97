package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// Option adjusts the logger built by Setup.
type Option func(*options)

type options struct {
	level  slog.Level
	writer io.Writer
}

// WithLevel sets the minimum level; the default is Info.
func WithLevel(level slog.Level) Option {
	return func(o *options) { o.level = level }
}

// WithWriter redirects log output, mainly for tests.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// Setup builds the service-wide JSON logger, installs it as the slog default,
// and bridges the standard library logger through it. Every line carries the
// service name, plus the environment when one is configured.
func Setup(service, env string, opts ...Option) *slog.Logger {
	o := options{level: slog.LevelInfo, writer: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	handler := slog.NewJSONHandler(o.writer, &slog.HandlerOptions{
		Level:       o.level,
		ReplaceAttr: renameCoreAttrs,
	})

	attrs := []slog.Attr{slog.String("service", strings.TrimSpace(service))}
	if env = strings.TrimSpace(env); env != "" {
		attrs = append(attrs, slog.String("env", env))
	}
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}

	base := slog.New(handler).With(args...)
	slog.SetDefault(base)

	stdBridge := slog.NewLogLogger(handler.WithAttrs(attrs), slog.LevelInfo)
	stdBridge.SetFlags(0)
	log.SetOutput(stdBridge.Writer())
	log.SetFlags(0)
	log.SetPrefix("")

	return base
}

// renameCoreAttrs maps slog's default keys onto the field names our log
// pipeline indexes on.
func renameCoreAttrs(groups []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		return slog.Attr{Key: "timestamp", Value: attr.Value}
	case slog.LevelKey:
		return slog.String("severity", strings.ToUpper(attr.Value.String()))
	case slog.MessageKey:
		return slog.Attr{Key: "message", Value: attr.Value}
	default:
		return attr
	}
}
