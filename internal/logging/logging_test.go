package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(&buf, "info", "json"), "auth")

	log.Info("user registered", "user_id", "123")
	log.Debug("dropped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "user registered", entry["msg"])
	assert.Equal(t, "auth", entry["component"])
	assert.Equal(t, "123", entry["user_id"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", "text")

	log.Debug("dbg", "a", 1)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "msg=dbg")
	assert.Contains(t, out, "a=1")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
