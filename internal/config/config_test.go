package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, 99, cfg.Session.MaxGuests)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Session.ReapInterval)
	assert.False(t, cfg.Session.NotifyOnReap)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICE.URLs)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	yaml := []byte("mode: debug\nport: 9000\nsession:\n  max_guests: 1\n  ttl: 30m\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), yaml, 0o644))

	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("WATCH_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 1, cfg.Session.MaxGuests)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Port:       1,
			PingPeriod: time.Second,
			PongWait:   2 * time.Second,
			WriteWait:  time.Second,
			Session:    SessionConfig{MaxGuests: 1, TTL: time.Hour, ReapInterval: time.Minute},
		}
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.Port = 0 }, true},
		{"no guests", func(c *Config) { c.Session.MaxGuests = 0 }, true},
		{"no ttl", func(c *Config) { c.Session.TTL = 0 }, true},
		{"ping after pong", func(c *Config) { c.PingPeriod = 3 * time.Second }, true},
		{"zero ping period", func(c *Config) { c.PingPeriod = 0 }, true},
		{"negative ping period", func(c *Config) { c.PingPeriod = -time.Second }, true},
		{"zero write wait", func(c *Config) { c.WriteWait = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
