package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, "combined", cfg.Format)
	require.Equal(t, "request_path", cfg.GroupBy)
	require.Equal(t, uint64(1), cfg.Having)
	require.Equal(t, 2*time.Second, cfg.Interval)
	require.Equal(t, uint64(10), cfg.Limit)
	require.Equal(t, "count", cfg.OrderBy)
	require.NoError(t, cfg.Validate())
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty format", func(c *Config) { c.Format = "" }},
		{"empty group_by", func(c *Config) { c.GroupBy = "" }},
		{"empty order_by", func(c *Config) { c.OrderBy = "" }},
		{"zero limit", func(c *Config) { c.Limit = 0 }},
		{"zero interval", func(c *Config) { c.Interval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topngx.yaml")
	data := []byte("format: common\ngroup_by: remote_addr\nlimit: 5\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "common", cfg.Format)
	require.Equal(t, "remote_addr", cfg.GroupBy)
	require.Equal(t, uint64(5), cfg.Limit)
	// Unset keys keep their defaults.
	require.Equal(t, "count", cfg.OrderBy)
}

func TestLoadFromFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topngx.json")
	data := []byte(`{"format": "main", "having": 3}`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "main", cfg.Format)
	require.Equal(t, uint64(3), cfg.Having)
}

func TestLoadFromFileUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topngx.toml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TOPNGX_FORMAT", "common")
	t.Setenv("TOPNGX_GROUP_BY", "status")
	t.Setenv("TOPNGX_HAVING", "4")
	t.Setenv("TOPNGX_INTERVAL", "5s")
	t.Setenv("TOPNGX_LIMIT", "20")
	t.Setenv("TOPNGX_NO_FOLLOW", "1")
	t.Setenv("TOPNGX_S3_REGION", "eu-west-1")

	cfg := Default()
	LoadFromEnv(cfg)

	require.Equal(t, "common", cfg.Format)
	require.Equal(t, "status", cfg.GroupBy)
	require.Equal(t, uint64(4), cfg.Having)
	require.Equal(t, 5*time.Second, cfg.Interval)
	require.Equal(t, uint64(20), cfg.Limit)
	require.True(t, cfg.NoFollow)
	require.Equal(t, "eu-west-1", cfg.S3.Region)
}

func TestLoadFromEnvIgnoresGarbageNumbers(t *testing.T) {
	t.Setenv("TOPNGX_LIMIT", "not-a-number")
	t.Setenv("TOPNGX_INTERVAL", "soon")

	cfg := Default()
	LoadFromEnv(cfg)

	require.Equal(t, uint64(10), cfg.Limit)
	require.Equal(t, 2*time.Second, cfg.Interval)
}
