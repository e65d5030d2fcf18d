package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.EmptyCellPlaceholder)
	assert.True(t, cfg.TrailingBreakOnEnter)
	assert.Equal(t, 10*time.Millisecond, cfg.CompletionDelay())
	assert.Equal(t, "te-content-table-", cfg.TableClassPrefix)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wwtable.yaml")
	content := "empty_cell_placeholder: false\ntable_completion_delay_ms: 25\ncell_align_method: style\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.EmptyCellPlaceholder)
	assert.True(t, cfg.TrailingBreakOnEnter)
	assert.Equal(t, 25*time.Millisecond, cfg.CompletionDelay())
	assert.Equal(t, "style", cfg.CellAlignMethod)

	caps := cfg.Capabilities()
	assert.False(t, caps.EmptyCellPlaceholder)
	assert.True(t, caps.TrailingBreakOnEnter)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wwtable.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table_class_prefix: doc-table-\n"), 0o644))
	t.Setenv("WWTABLE_TRAILING_BREAK_ON_ENTER", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.TrailingBreakOnEnter)
	assert.Equal(t, "doc-table-", cfg.TableClassPrefix)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "negative delay", content: "table_completion_delay_ms: -1\n"},
		{name: "empty prefix", content: "table_class_prefix: \"\"\n"},
		{name: "unknown align", content: "cell_align_method: justify\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "wwtable.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadConfig(path)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wwtable.yaml")
	cfg := NewDefaultConfig()
	cfg.FormatMarkdown = true
	cfg.CellAlignMethod = "none"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
