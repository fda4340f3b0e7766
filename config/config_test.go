package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreJSON, cfg.Store)
	assert.Equal(t, "achievements.json", cfg.SavePath)
	assert.Equal(t, "achievements.db", cfg.DBPath)
	assert.Empty(t, cfg.Catalog)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, 60, cfg.FPS)
	assert.False(t, cfg.Muted)
	assert.Equal(t, 0.8, cfg.Volume)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TROPHY_STORE", "sqlite")
	t.Setenv("TROPHY_DB_PATH", "/tmp/a.db")
	t.Setenv("TROPHY_CATALOG", "catalog.yaml")
	t.Setenv("TROPHY_DEBUG", "true")
	t.Setenv("TROPHY_FPS", "30")
	t.Setenv("TROPHY_MUTED", "1")
	t.Setenv("TROPHY_VOLUME", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "/tmp/a.db", cfg.DBPath)
	assert.Equal(t, "catalog.yaml", cfg.Catalog)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 30, cfg.FPS)
	assert.True(t, cfg.Muted)
	assert.Equal(t, 0.0, cfg.Volume)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"non-numeric fps", "TROPHY_FPS", "fast", "parse env:"},
		{"fps too high", "TROPHY_FPS", "1000", "invalid fps"},
		{"fps zero", "TROPHY_FPS", "0", "invalid fps"},
		{"unknown store", "TROPHY_STORE", "redis", "invalid store"},
		{"volume out of range", "TROPHY_VOLUME", "2", "invalid volume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFrameInterval(t *testing.T) {
	assert.Equal(t, 20*time.Millisecond, Config{FPS: 50}.FrameInterval())
	assert.Equal(t, time.Second, Config{FPS: 1}.FrameInterval())
}
