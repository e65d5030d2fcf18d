package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriterLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, false)
	l.Debug("hidden")
	l.Info("shown", zap.Int("rows", 2))
	require.NoError(t, l.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, float64(2), entry["rows"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	l := Component(NewWriterLogger(&buf, true), "table-manager")
	l.Debug("key handled")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "table-manager", entry["logger"])

	assert.NotPanics(t, func() { Component(nil, "x").Info("dropped") })
}
