package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config is the env-driven logger configuration.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`   // debug, info, warn, error
	Format string `env:"LOG_FORMAT" envDefault:"json"`  // json or text
	Env    string `env:"ENVIRONMENT" envDefault:"prod"` // tagged onto every record
}

// Option configures logger creation.
type Option func(*config)

type config struct {
	level  slog.Level
	format string
	output io.Writer
	attrs  []slog.Attr
}

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

func WithTextFormat() Option {
	return func(c *config) { c.format = "text" }
}

// WithOutput sets a custom destination; nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithService tags every record with the service name.
func WithService(name string) Option {
	return func(c *config) {
		if name != "" {
			c.attrs = append(c.attrs, slog.String("service", name))
		}
	}
}

func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) { c.attrs = append(c.attrs, attrs...) }
}

// New returns a slog.Logger with production-safe defaults: JSON at info
// level on stdout.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:  slog.LevelInfo,
		format: "json",
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}
	var h slog.Handler
	if cfg.format == "text" {
		h = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		h = slog.NewJSONHandler(cfg.output, handlerOpts)
	}
	if len(cfg.attrs) > 0 {
		h = h.WithAttrs(cfg.attrs)
	}
	return slog.New(h)
}

// NewFromConfig builds a logger from env-driven configuration, tagged
// with the service name and environment.
func NewFromConfig(cfg Config, service string) *slog.Logger {
	opts := []Option{
		WithLevel(ParseLevel(cfg.Level)),
		WithService(service),
	}
	if strings.EqualFold(cfg.Format, "text") {
		opts = append(opts, WithTextFormat())
	}
	if cfg.Env != "" {
		opts = append(opts, WithAttr(slog.String("env", cfg.Env)))
	}
	return New(opts...)
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
