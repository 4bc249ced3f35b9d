package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "findtext.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), writeConfig(t, "{}\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{".txt", ".pdf"}, cfg.Extensions)
	assert.Equal(t, 30*time.Second, cfg.BinaryTimeout)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "auto", cfg.Color)
	assert.Equal(t, "red", cfg.Highlight)
	assert.Equal(t, "color", cfg.Style)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.Recursive)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
recursive: true
extensions: [md, TXT]
binary_timeout: 5s
highlight: cyan
style: underline
workers: 3
`)
	cfg, err := Load(New(), path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Recursive)
	assert.Equal(t, []string{".txt", ".md"}, cfg.Extensions)
	assert.Equal(t, 5*time.Second, cfg.BinaryTimeout)
	assert.Equal(t, "cyan", cfg.Highlight)
	assert.Equal(t, "underline", cfg.Style)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FINDTEXT_FORMAT", "json")
	t.Setenv("FINDTEXT_CASE_SENSITIVE", "true")

	cfg, err := Load(New(), writeConfig(t, "format: yaml\n"))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.CaseSensitive)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Format: "TEXT", Color: "auto", Highlight: "Red", Style: "bold", LogLevel: "warn"}
	}

	c := valid()
	require.NoError(t, c.Validate())
	assert.Equal(t, "text", c.Format)
	assert.Equal(t, "red", c.Highlight)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Format = "xml" }},
		{"color", func(c *Config) { c.Color = "sometimes" }},
		{"highlight", func(c *Config) { c.Highlight = "purple" }},
		{"style", func(c *Config) { c.Style = "italic" }},
		{"log level", func(c *Config) { c.LogLevel = "trace" }},
		{"workers", func(c *Config) { c.Workers = -1 }},
		{"timeout", func(c *Config) { c.BinaryTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}
