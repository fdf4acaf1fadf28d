package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
	}{
		{level: "debug", debugSeen: true},
		{level: " INFO ", debugSeen: false},
		{level: "bogus", debugSeen: false},
		{level: "", debugSeen: false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			logger.Debug().Msg("hidden?")
			assert.Equal(t, tt.debugSeen, buf.Len() > 0)
		})
	}
}

func TestNewLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info")
	logger.Info().Str("component", "bot").Msg("ready")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "chat-app", line["service"])
	assert.Equal(t, "bot", line["component"])
	assert.Contains(t, line, "time")
}
