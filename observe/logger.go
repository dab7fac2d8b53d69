package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Logger is a minimal structured logging interface.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is a structured log field.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for building a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Level is a logging threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

// ParseLevel parses a level name. The empty string is info.
func ParseLevel(s string) (Level, bool) {
	if s == "" {
		return LevelInfo, true
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), true
		}
	}
	return LevelInfo, false
}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "info"
	}
	return levelNames[l]
}

// Keys whose values never reach the writer. Relayed bodies can carry the
// user's address.
var redactedKeys = map[string]struct{}{
	"body":          {},
	"password":      {},
	"secret":        {},
	"token":         {},
	"authorization": {},
	"dsn":           {},
}

const redactedValue = "[REDACTED]"

// jsonLogger writes one JSON object per line. Keys keep call order: ts,
// level, msg, trace ids when ctx carries a span, With fields, then call
// fields.
type jsonLogger struct {
	level Level
	mu    *sync.Mutex
	w     io.Writer
	base  []Field
}

// NewLogger returns a JSON line logger on stderr. Unknown levels are info.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter returns a JSON line logger on w.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	lvl, _ := ParseLevel(level)
	return &jsonLogger{level: lvl, mu: &sync.Mutex{}, w: w}
}

// With shares the writer and its lock with the parent.
func (l *jsonLogger) With(fields ...Field) Logger {
	base := make([]Field, 0, len(l.base)+len(fields))
	base = append(base, l.base...)
	for _, f := range fields {
		base = append(base, Field{Key: f.Key, Value: scrub(f)})
	}
	return &jsonLogger{level: l.level, mu: l.mu, w: l.w, base: base}
}

func (l *jsonLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelDebug, msg, fields)
}

func (l *jsonLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelInfo, msg, fields)
}

func (l *jsonLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelWarn, msg, fields)
}

func (l *jsonLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelError, msg, fields)
}

func (l *jsonLogger) write(ctx context.Context, level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	appendPair(&buf, "ts", time.Now().UTC().Format(time.RFC3339Nano))
	appendPair(&buf, "level", level.String())
	appendPair(&buf, "msg", msg)
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			appendPair(&buf, "trace_id", sc.TraceID().String())
			appendPair(&buf, "span_id", sc.SpanID().String())
		}
	}
	for _, f := range l.base {
		appendPair(&buf, f.Key, f.Value)
	}
	for _, f := range fields {
		appendPair(&buf, f.Key, scrub(f))
	}
	buf.WriteString("}\n")

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(buf.Bytes())
}

func appendPair(buf *bytes.Buffer, key string, value any) {
	if buf.Len() > 1 {
		buf.WriteByte(',')
	}
	k, _ := json.Marshal(key)
	buf.Write(k)
	buf.WriteByte(':')
	v, err := json.Marshal(value)
	if err != nil {
		v, _ = json.Marshal(fmt.Sprint(value))
	}
	buf.Write(v)
}

func scrub(f Field) any {
	if _, ok := redactedKeys[f.Key]; ok {
		return redactedValue
	}
	if err, ok := f.Value.(error); ok {
		return err.Error()
	}
	return f.Value
}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...Field)  {}
func (nopLogger) Warn(context.Context, string, ...Field)  {}
func (nopLogger) Error(context.Context, string, ...Field) {}
func (nopLogger) Debug(context.Context, string, ...Field) {}
func (l nopLogger) With(...Field) Logger                  { return l }
