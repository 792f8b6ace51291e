package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config provides environment-based logger configuration.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	App    string `env:"LOG_APP" envDefault:""`
}

type settings struct {
	level  slog.Level
	format string
	app    string
	output io.Writer
	attrs  []slog.Attr
}

// Option configures the logger factory.
type Option func(*settings)

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(s *settings) {
		s.level = level
	}
}

// WithTextFormatter emits human-readable text output.
func WithTextFormatter() Option {
	return func(s *settings) {
		s.format = "text"
	}
}

// WithJSONFormatter emits JSON output.
func WithJSONFormatter() Option {
	return func(s *settings) {
		s.format = "json"
	}
}

// WithOutput redirects log output. Defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.output = w
		}
	}
}

// WithApp attaches an application name to every record.
func WithApp(app string) Option {
	return func(s *settings) {
		s.app = app
	}
}

// WithAttrs attaches static attributes to every record.
func WithAttrs(attrs ...slog.Attr) Option {
	return func(s *settings) {
		s.attrs = append(s.attrs, attrs...)
	}
}

// New creates a structured logger with the given options.
func New(opts ...Option) *slog.Logger {
	s := &settings{
		level:  slog.LevelInfo,
		format: "json",
		output: os.Stderr,
	}

	for _, opt := range opts {
		opt(s)
	}

	handlerOpts := &slog.HandlerOptions{Level: s.level}

	var handler slog.Handler
	if s.format == "text" {
		handler = slog.NewTextHandler(s.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(s.output, handlerOpts)
	}

	attrs := s.attrs
	if s.app != "" {
		attrs = append([]slog.Attr{slog.String("app", s.app)}, attrs...)
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	return slog.New(handler)
}

// NewFromConfig creates a logger from configuration. Explicit options are
// applied after config values and take precedence.
func NewFromConfig(cfg Config, opts ...Option) *slog.Logger {
	configOpts := make([]Option, 0, len(opts)+3)

	configOpts = append(configOpts, WithLevel(parseLevel(cfg.Level)))
	if strings.EqualFold(cfg.Format, "text") {
		configOpts = append(configOpts, WithTextFormatter())
	}
	if cfg.App != "" {
		configOpts = append(configOpts, WithApp(cfg.App))
	}

	configOpts = append(configOpts, opts...)

	return New(configOpts...)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
