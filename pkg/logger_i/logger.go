package logger_i

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/akolanti/DocFlowAPI/internal/config"
)

type Logger struct {
	inner *slog.Logger
}

// Init installs the process wide handler. JSON in production, text otherwise.
func Init(env config.Environment) {
	options := &slog.HandlerOptions{
		Level: parseLevel(env.LogLevel),
	}

	var handler slog.Handler
	if env.IsProd {
		handler = slog.NewJSONHandler(os.Stdout, options)
	} else {
		handler = slog.NewTextHandler(os.Stdout, options)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	default:
		return config.DefaultLogLevel
	}
}

// NewLogger can be called before Init: records are routed to whatever
// handler is the default when they are written.
func NewLogger(section string) *Logger {
	return &Logger{
		inner: slog.New(lateHandler{}).With("component", section),
	}
}

// lateHandler resolves slog.Default at Handle time and replays the
// attrs and groups collected through With and WithGroup.
type lateHandler struct {
	wrap []func(slog.Handler) slog.Handler
}

func (h lateHandler) resolve() slog.Handler {
	inner := slog.Default().Handler()
	for _, w := range h.wrap {
		inner = w(inner)
	}
	return inner
}

func (h lateHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slog.Default().Handler().Enabled(ctx, level)
}

func (h lateHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.resolve().Handle(ctx, r)
}

func (h lateHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(inner slog.Handler) slog.Handler { return inner.WithAttrs(attrs) })
}

func (h lateHandler) WithGroup(name string) slog.Handler {
	return h.with(func(inner slog.Handler) slog.Handler { return inner.WithGroup(name) })
}

func (h lateHandler) with(w func(slog.Handler) slog.Handler) lateHandler {
	wrap := make([]func(slog.Handler) slog.Handler, len(h.wrap), len(h.wrap)+1)
	copy(wrap, h.wrap)
	return lateHandler{wrap: append(wrap, w)}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	l.inner.Log(context.Background(), level, msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		inner: l.inner.With(args...),
	}
}

// FromContext tags the logger with the trace id carried by ctx, if any.
func (l *Logger) FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok && trace != "" {
		return l.With("traceId", trace)
	}
	return l
}
