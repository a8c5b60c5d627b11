package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	p := writeFile(t, "mode: release\nstorage:\n  backend: memory\n")

	cfg, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 10*time.Second, cfg.Storage.ReadWait)
	assert.Equal(t, 5*time.Second, cfg.Storage.WriteWait)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, 6*time.Hour, cfg.Photos.CacheTTL)
}

func TestLoadConfigEnvOverridesSecrets(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.example/abc")
	t.Setenv("JWT_SECRET", "s3cret")
	p := writeFile(t, "mode: dev\nauth:\n  enabled: true\nphotos:\n  timeout: 3s\n")

	cfg, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, "https://hooks.example/abc", cfg.Slack.WebhookURL)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 3*time.Second, cfg.Photos.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "prod" }},
		{"bad backend", func(c *Config) { c.Storage.Backend = "gsheets" }},
		{"auth without secret", func(c *Config) { c.Auth.Enabled = true }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	c := Default()
	assert.NoError(t, c.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
