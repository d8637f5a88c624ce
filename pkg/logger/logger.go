package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Output io.Writer
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(&Logger{zl: zerolog.New(os.Stdout).With().Timestamp().Logger()})
}

// L returns the process-wide logger used by bootstrap code.
func L() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

func New(cfg Config) (*Logger, error) {
	levelName := strings.ToLower(strings.TrimSpace(cfg.Level))
	if levelName == "" {
		levelName = "info"
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if strings.EqualFold(cfg.Format, "console") {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}, nil
}

// Nop discards everything; used by tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger that always carries fields.
func (l *Logger) With(fields ...Field) *Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = f.addToContext(ctx)
	}
	return &Logger{zl: ctx.Logger()}
}

func (l *Logger) Debug(msg string, fields ...Field) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...Field) {
	emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...Field) {
	emit(l.zl.Error(), msg, fields)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...Field) {
	emit(l.zl.Fatal(), msg, fields)
}

func emit(event *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		f.AddTo(event)
	}
	event.Msg(msg)
}

// Field is a typed key/value attached to a log line.
type Field struct {
	key   string
	add   func(e *zerolog.Event, key string)
	addTo func(c zerolog.Context, key string) zerolog.Context
}

func (f Field) AddTo(e *zerolog.Event) {
	f.add(e, f.key)
}

func (f Field) addToContext(c zerolog.Context) zerolog.Context {
	return f.addTo(c, f.key)
}

func String(key, value string) Field {
	return Field{
		key:   key,
		add:   func(e *zerolog.Event, k string) { e.Str(k, value) },
		addTo: func(c zerolog.Context, k string) zerolog.Context { return c.Str(k, value) },
	}
}

func Int(key string, value int) Field {
	return Field{
		key:   key,
		add:   func(e *zerolog.Event, k string) { e.Int(k, value) },
		addTo: func(c zerolog.Context, k string) zerolog.Context { return c.Int(k, value) },
	}
}

func Int64(key string, value int64) Field {
	return Field{
		key:   key,
		add:   func(e *zerolog.Event, k string) { e.Int64(k, value) },
		addTo: func(c zerolog.Context, k string) zerolog.Context { return c.Int64(k, value) },
	}
}

func Bool(key string, value bool) Field {
	return Field{
		key:   key,
		add:   func(e *zerolog.Event, k string) { e.Bool(k, value) },
		addTo: func(c zerolog.Context, k string) zerolog.Context { return c.Bool(k, value) },
	}
}

func Error(err error) Field {
	return Field{
		key:   zerolog.ErrorFieldName,
		add:   func(e *zerolog.Event, _ string) { e.Err(err) },
		addTo: func(c zerolog.Context, _ string) zerolog.Context { return c.Err(err) },
	}
}

func Any(key string, value interface{}) Field {
	return Field{
		key:   key,
		add:   func(e *zerolog.Event, k string) { e.Interface(k, value) },
		addTo: func(c zerolog.Context, k string) zerolog.Context { return c.Interface(k, value) },
	}
}

func Duration(key string, value time.Duration) Field {
	return Field{
		key:   key,
		add:   func(e *zerolog.Event, k string) { e.Dur(k, value) },
		addTo: func(c zerolog.Context, k string) zerolog.Context { return c.Dur(k, value) },
	}
}

func Strings(key string, value []string) Field {
	return Field{
		key:   key,
		add:   func(e *zerolog.Event, k string) { e.Strs(k, value) },
		addTo: func(c zerolog.Context, k string) zerolog.Context { return c.Strs(k, value) },
	}
}
