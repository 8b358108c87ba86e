package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerPromotesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	WithComponent(logger, "scheduler").Info("queued", Int("items", 3))

	line := buf.String()
	if !strings.Contains(line, "scheduler: queued") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "items=3") {
		t.Fatalf("expected flattened attr, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not appear as trailing attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Writer: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Warn("skip", String("reason", "already exists"))

	if !strings.Contains(buf.String(), `reason="already exists"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("hidden")
	logger.Error("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("error record missing: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("hello", slog.String("k", "v"))

	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) {
		t.Fatalf("expected json msg key, got %q", out)
	}
	if !strings.Contains(out, `"level":"info"`) {
		t.Fatalf("expected lowercase level, got %q", out)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := New(Options{Format: "logfmt", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
