package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo})

	logger.Info("index built", "dialect", "trino")
	logger.Debug("should be filtered")

	out := buf.String()
	if !strings.Contains(out, "index built") || !strings.Contains(out, "dialect=trino") {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, "should be filtered") {
		t.Errorf("debug record not filtered at info level: %s", out)
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{JSON: true})

	logger.Info("hello")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected JSON output, got: %s", buf.String())
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must accept arbitrary attrs.
	logger.Info("ignored", "key", "value")
	logger.Error("also ignored")
}
