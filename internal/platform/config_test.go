package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adapter: http\ntarget: https://api.example.com\ntoken: tok-123\npoll_interval: 10s\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Adapter)
	assert.Equal(t, "https://api.example.com", cfg.Target)
	assert.Equal(t, "tok-123", cfg.Token)
	d, err := cfg.PollDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
	assert.Len(t, cfg.Options(), 3)
}

func TestLoadConfigMissingFileIsZero(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Zero(t, cfg)
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
