// Package logger provides the slog-based logger used across rpcvalidate.  The
// handler and level are picked up from the LOG_HANDLER and LOG_LEVEL
// environment variables, and a logger can be carried in a context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

type ctxKey struct{}

type handler int

const (
	JSONHandler handler = iota
	TextHandler
	DevHandler
)

// NOTE: reference
// https://go.dev/src/log/slog/example_custom_levels_test.go
const (
	DefaultLevel = slog.LevelInfo

	LevelTrace   = slog.Level(-8)
	LevelDebug   = slog.LevelDebug
	LevelInfo    = slog.LevelInfo
	LevelWarning = slog.LevelWarn
	LevelError   = slog.LevelError
)

type Logger interface {
	Debug(msg string, args ...any)
	DebugContext(ctx context.Context, msg string, args ...any)
	Info(msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	Warn(msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	Error(msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
	Handler() slog.Handler
	Level() slog.Level
	With(args ...any) Logger

	Trace(msg string, args ...any)
	TraceContext(ctx context.Context, msg string, args ...any)
	SLog() *slog.Logger
}

type LoggerOpt func(o *loggerOpts)

type loggerOpts struct {
	writer  io.Writer
	level   slog.Level
	handler handler
}

func WithLoggerLevel(lvl slog.Level) LoggerOpt {
	return func(o *loggerOpts) {
		o.level = lvl
	}
}

func WithLoggerWriter(w io.Writer) LoggerOpt {
	return func(o *loggerOpts) {
		o.writer = w
	}
}

func WithHandler(h handler) LoggerOpt {
	return func(o *loggerOpts) {
		o.handler = h
	}
}

// New builds a logger from the environment, then applies opts.
func New(opts ...LoggerOpt) Logger {
	o := &loggerOpts{
		level:   ParseLevel(os.Getenv("LOG_LEVEL")),
		writer:  os.Stderr,
		handler: handlerFromEnv(),
	}
	for _, apply := range opts {
		apply(o)
	}

	var h slog.Handler
	switch o.handler {
	case DevHandler:
		h = tint.NewHandler(o.writer, &tint.Options{
			Level:      o.level,
			TimeFormat: "[15:04:05.000]",
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key != slog.LevelKey || len(groups) > 0 {
					return a
				}
				lvl, ok := a.Value.Any().(slog.Level)
				if !ok {
					return a
				}
				// keep default colors for warn and error
				switch lvl {
				case LevelTrace:
					return tint.Attr(13, slog.String(a.Key, "TRC"))
				case LevelDebug:
					return tint.Attr(3, slog.String(a.Key, "DBG"))
				case LevelInfo:
					return tint.Attr(14, slog.String(a.Key, "INF"))
				}
				return a
			},
		})
	case TextHandler:
		h = slog.NewTextHandler(o.writer, handlerOpts(o.level))
	default:
		h = slog.NewJSONHandler(o.writer, handlerOpts(o.level))
	}

	return &logger{Logger: slog.New(h), level: o.level}
}

func handlerOpts(lvl slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.LevelKey && len(groups) == 0 {
				if l, ok := attr.Value.Any().(slog.Level); ok && l == LevelTrace {
					return slog.String(attr.Key, "TRACE")
				}
			}
			return attr
		},
	}
}

func handlerFromEnv() handler {
	switch strings.ToLower(os.Getenv("LOG_HANDLER")) {
	case "json":
		return JSONHandler
	case "txt", "text":
		return TextHandler
	default:
		return DevHandler
	}
}

// StdlibLogger returns the logger stored in ctx, or a new logger if none is
// stored.
func StdlibLogger(ctx context.Context, opts ...LoggerOpt) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return New(opts...)
}

// WithStdlib stores l in ctx.
func WithStdlib(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// VoidLogger discards everything.
func VoidLogger() Logger {
	return New(WithLoggerWriter(io.Discard))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return DefaultLevel
	}
}

// logger is a wrapper over slog with a trace level
type logger struct {
	*slog.Logger
	level slog.Level
}

func (l *logger) Level() slog.Level {
	return l.level
}

func (l *logger) With(args ...any) Logger {
	if len(args) == 0 {
		return l
	}
	return &logger{
		Logger: l.Logger.With(args...),
		level:  l.level,
	}
}

func (l *logger) Trace(msg string, args ...any) {
	l.Logger.Log(context.Background(), LevelTrace, msg, args...)
}

func (l *logger) TraceContext(ctx context.Context, msg string, args ...any) {
	l.Logger.Log(ctx, LevelTrace, msg, args...)
}

func (l *logger) SLog() *slog.Logger {
	return l.Logger
}
