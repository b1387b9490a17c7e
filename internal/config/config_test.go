package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 20, cfg.Analysis.SliceCount)
	assert.Equal(t, 0.5, cfg.Analysis.ColorEntropyWeight)
	assert.Equal(t, 7, cfg.Analysis.SmoothingStrength)
	assert.Equal(t, "imaging", cfg.Backend.Name)
	assert.Equal(t, 85, cfg.Output.Quality)
	assert.Equal(t, 4, cfg.Batch.Workers)
	require.Len(t, cfg.Sizes, 4)
	assert.Equal(t, SizeConfig{Name: "thumbnail", Width: 150, Height: 150, Crop: true}, cfg.Sizes[0])
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Analysis.SliceCount = 12
	cfg.Backend.Name = "gift"
	cfg.Sizes = []SizeConfig{{Name: "square", Width: 64, Height: 64, Crop: true}}
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"analysis":{"slice_count":30}}`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Analysis.SliceCount)
	assert.Equal(t, 0.5, cfg.Analysis.ColorEntropyWeight)
	assert.Equal(t, Default().Sizes, cfg.Sizes)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read config file")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadAppliesEnvironment(t *testing.T) {
	t.Setenv("FOCALCROP_SLICE_COUNT", "16")
	t.Setenv("FOCALCROP_WEIGHT", "0.25")
	t.Setenv("FOCALCROP_BACKEND", "gift")
	t.Setenv("FOCALCROP_WORKERS", "2")
	t.Setenv("FOCALCROP_LOSSLESS", "true")
	t.Setenv("FOCALCROP_OUTPUT_DIR", "/tmp/thumbs")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Analysis.SliceCount)
	assert.Equal(t, 0.25, cfg.Analysis.ColorEntropyWeight)
	assert.Equal(t, "gift", cfg.Backend.Name)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.True(t, cfg.Output.Lossless)
	assert.Equal(t, "/tmp/thumbs", cfg.Output.OutputDir)
}

func TestLoadRejectsBadEnvironment(t *testing.T) {
	t.Setenv("FOCALCROP_SLICE_COUNT", "many")
	_, err := Load("")
	assert.ErrorContains(t, err, "FOCALCROP_SLICE_COUNT")
}

func TestLoadValidates(t *testing.T) {
	t.Setenv("FOCALCROP_WEIGHT", "1.5")
	_, err := Load("")
	assert.ErrorContains(t, err, "color_entropy_weight")
}

func TestReadSkipsValidation(t *testing.T) {
	t.Setenv("FOCALCROP_QUALITY", "0")

	cfg, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Output.Quality)

	cfg.Output.Quality = 80
	assert.NoError(t, cfg.Validate())

	_, err = Load("")
	assert.ErrorContains(t, err, "output.quality")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"slices", func(c *Config) { c.Analysis.SliceCount = 1 }, "slice_count"},
		{"weight", func(c *Config) { c.Analysis.ColorEntropyWeight = -0.1 }, "color_entropy_weight"},
		{"smoothing", func(c *Config) { c.Analysis.SmoothingStrength = -1 }, "smoothing_strength"},
		{"backend", func(c *Config) { c.Backend.Name = "imagick" }, "backend.name"},
		{"format", func(c *Config) { c.Output.Format = "heic" }, "output.format"},
		{"quality", func(c *Config) { c.Output.Quality = 0 }, "output.quality"},
		{"workers", func(c *Config) { c.Batch.Workers = 0 }, "batch.workers"},
		{"no sizes", func(c *Config) { c.Sizes = nil }, "sizes cannot be empty"},
		{"unnamed size", func(c *Config) { c.Sizes[0].Name = "" }, "name cannot be empty"},
		{"duplicate size", func(c *Config) { c.Sizes[1].Name = "thumbnail" }, "duplicated"},
		{"empty size", func(c *Config) { c.Sizes[1].Width, c.Sizes[1].Height = 0, 0 }, "positive width or height"},
		{"cropped open side", func(c *Config) { c.Sizes[0].Height = 0 }, "needs both width and height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, ".config", "focalcrop", "config.json"), GetConfigPath())
}
