package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("failed to parse log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lines))
	}
	if lines[0]["level"] != "warn" || lines[1]["level"] != "error" {
		t.Errorf("unexpected levels: %v, %v", lines[0]["level"], lines[1]["level"])
	}
}

func TestLogger_KeyOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf).With(F("client", "c-1"))

	logger.Info(context.Background(), "relayed", F("kind", "weather"))

	line := buf.String()
	order := []string{`"ts"`, `"level"`, `"msg":"relayed"`, `"client":"c-1"`, `"kind":"weather"`}
	last := -1
	for _, key := range order {
		i := strings.Index(line, key)
		if i <= last {
			t.Fatalf("%s out of order in %s", key, line)
		}
		last = i
	}
}

func TestLogger_TraceCorrelation(t *testing.T) {
	var buf bytes.Buffer
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "fetch")
	defer span.End()

	NewLoggerWithWriter("info", &buf).Info(ctx, "in span")

	lines := decodeLines(t, &buf)
	if lines[0]["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("trace_id = %v, want %s", lines[0]["trace_id"], span.SpanContext().TraceID())
	}
	if _, ok := lines[0]["span_id"]; !ok {
		t.Error("entry missing span_id")
	}
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf).With(F("dsn", "redis://:pw@host"))

	logger.Info(context.Background(), "msg",
		F("body", `{"address":{"country":"PT"}}`),
		F("token", "eyJhbGci"),
	)

	out := buf.String()
	for _, leaked := range []string{"PT", "eyJhbGci", "pw@host"} {
		if strings.Contains(out, leaked) {
			t.Errorf("sensitive value %q leaked: %s", leaked, out)
		}
	}
	if !strings.Contains(out, redactedValue) {
		t.Errorf("expected redaction marker: %s", out)
	}
}

func TestLogger_Values(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Error(context.Background(), "failed",
		F("error", errors.New("boom")),
		F("ch", make(chan int)),
	)

	lines := decodeLines(t, &buf)
	if lines[0]["error"] != "boom" {
		t.Errorf("error field = %v, want boom", lines[0]["error"])
	}
	if _, ok := lines[0]["ch"].(string); !ok {
		t.Errorf("unencodable value = %v, want its string form", lines[0]["ch"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"info", LevelInfo, true},
		{"warn", LevelWarn, true},
		{"error", LevelError, true},
		{"", LevelInfo, true},
		{"loud", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
