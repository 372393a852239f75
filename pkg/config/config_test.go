package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 266, cfg.Height())
	assert.Equal(t, filepath.Join("images", "sc3_w400_s50_d50.bmp"), cfg.ExportPath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ZeroScene", func(c *Config) { c.Scene = 0 }},
		{"ZeroWidth", func(c *Config) { c.Width = 0 }},
		{"NegativeWidth", func(c *Config) { c.Width = -10 }},
		{"WidthTooSmallForHeight", func(c *Config) { c.Width = 1 }},
		{"ZeroSamples", func(c *Config) { c.Samples = 0 }},
		{"ZeroDepth", func(c *Config) { c.Depth = 0 }},
		{"NegativeWorkers", func(c *Config) { c.Workers = -1 }},
		{"NegativeRefresh", func(c *Config) { c.Refresh = Duration{-time.Second} }},
		{"UnknownFormat", func(c *Config) { c.Format = "gif" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestExportPath(t *testing.T) {
	cfg := Default()
	cfg.Scene = 1
	cfg.Width = 1200
	cfg.Samples = 500
	cfg.Depth = 10
	cfg.Out = "out"
	cfg.Format = "png"

	assert.Equal(t, filepath.Join("out", "sc1_w1200_s500_d10.png"), cfg.ExportPath())
}

func TestPassConfig(t *testing.T) {
	cfg := Default()
	cfg.Width = 300
	cfg.Workers = 3
	cfg.Seed = 9

	pass := cfg.PassConfig()
	assert.Equal(t, 300, pass.Width)
	assert.Equal(t, 200, pass.Height)
	assert.Equal(t, cfg.Samples, pass.SamplesPerPixel)
	assert.Equal(t, cfg.Depth, pass.MaxDepth)
	assert.Equal(t, 3, pass.Workers)
	assert.Equal(t, int64(9), pass.Seed)
	assert.Equal(t, time.Second, pass.RefreshInterval)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.toml")
	data := []byte(`
scene = 1
width = 600
refresh = "250ms"
format = "png"
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg := Default()
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, 1, cfg.Scene)
	assert.Equal(t, 600, cfg.Width)
	assert.Equal(t, 250*time.Millisecond, cfg.Refresh.Duration)
	assert.Equal(t, "png", cfg.Format)
	// Untouched keys keep their defaults
	assert.Equal(t, 50, cfg.Samples)
	assert.Equal(t, "images", cfg.Out)
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.toml")
	require.NoError(t, os.WriteFile(path, []byte("samplez = 4\n"), 0o644))

	cfg := Default()
	assert.ErrorIs(t, LoadFile(path, &cfg), ErrInvalid)
}

func TestLoadFile_Missing(t *testing.T) {
	cfg := Default()
	err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"), &cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshal_RoundTripsThroughLoadFile(t *testing.T) {
	cfg := Default()
	cfg.Scene = 2
	cfg.Refresh = Duration{2 * time.Second}

	data, err := cfg.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "saved.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded := Config{}
	require.NoError(t, LoadFile(path, &loaded))
	assert.Equal(t, cfg, loaded)
}
