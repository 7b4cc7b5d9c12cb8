package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/snappword/snappword-backend/internal/config"
)

func bufferedLogger(buf *bytes.Buffer, cfg config.LogConfig) *slog.Logger {
	return slog.New(newLogHandler(buf, cfg))
}

func TestNewLogger_SetsDefault(t *testing.T) {
	logger := NewLogger(config.LogConfig{Level: "info", Format: "json"})

	if logger == nil {
		t.Fatal("logger should not be nil")
	}
	if slog.Default().Handler() != logger.Handler() {
		t.Error("NewLogger should install the returned logger as the slog default")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := bufferedLogger(&buf, config.LogConfig{Level: tt.level, Format: "json"})

			logger.Log(context.TODO(), tt.want, "at threshold")
			if buf.Len() == 0 {
				t.Errorf("record at %v should pass the %q threshold", tt.want, tt.level)
			}

			buf.Reset()
			logger.Log(context.TODO(), tt.want-1, "below threshold")
			if buf.Len() != 0 {
				t.Errorf("record below %v should be suppressed, got: %s", tt.want, buf.String())
			}
		})
	}
}

func TestLogger_JSONFormatProducesParsableRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := bufferedLogger(&buf, config.LogConfig{Level: "info", Format: "json"})

	logger.Info("screenshot received", "user_id", "U123", "bytes", 48213)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("json handler should emit valid JSON: %v", err)
	}
	if record["msg"] != "screenshot received" {
		t.Errorf("msg = %v, want %q", record["msg"], "screenshot received")
	}
	if record["user_id"] != "U123" {
		t.Errorf("user_id = %v, want U123", record["user_id"])
	}
	if _, ok := record["source"]; ok {
		t.Error("json format should not carry source locations")
	}
}

func TestLogger_TextFormatIncludesSource(t *testing.T) {
	var buf bytes.Buffer
	logger := bufferedLogger(&buf, config.LogConfig{Level: "debug", Format: "text"})

	logger.Debug("local run")

	if !strings.Contains(buf.String(), "source=") {
		t.Error("text format should include source locations for development")
	}
}
