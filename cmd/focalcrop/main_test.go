package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/focalcrop/internal/config"
	"github.com/menta2k/focalcrop/pkg/thumbnail"
)

func writeTestPNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), 90, 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestRunDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	require.NoError(t, os.Mkdir(in, 0o755))
	writeTestPNG(t, filepath.Join(in, "a.png"), 240, 160)
	writeTestPNG(t, filepath.Join(in, "b.png"), 160, 240)
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0o644))

	out := filepath.Join(dir, "out")
	reportPath := filepath.Join(dir, "report.json")
	var stdout bytes.Buffer
	err := run(context.Background(), []string{
		"-in", in, "-out", out, "-sizes", "sq=100x100:crop,fit=120x",
		"-workers", "2", "-ext", "png", "-report", reportPath,
	}, &stdout)
	require.NoError(t, err)

	for _, name := range []string{"a-100x100.png", "a-120x80.png", "b-100x100.png", "b-120x180.png"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.Contains(t, stdout.String(), "4 thumbnail(s)")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var results []thumbnail.FileResult
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 2)
	assert.Len(t, results[0].Outputs, 2)
}

func TestRunUsesHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfgDir := filepath.Join(home, ".config", "focalcrop")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.json"),
		[]byte(`{"sizes": [{"name": "square", "width": 64, "height": 64, "crop": true}]}`), 0o644))

	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	writeTestPNG(t, src, 240, 160)
	out := filepath.Join(dir, "out")

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-in", src, "-out", out}, &stdout))
	assert.FileExists(t, filepath.Join(out, "a-64x64.png"))
	assert.NoFileExists(t, filepath.Join(out, "a-150x150.png"))

	// an explicit -config wins over the home file
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(other, []byte(`{"sizes": [{"name": "tiny", "width": 32, "height": 32, "crop": true}]}`), 0o644))
	require.NoError(t, run(context.Background(), []string{"-in", src, "-out", out, "-config", other}, &stdout))
	assert.FileExists(t, filepath.Join(out, "a-32x32.png"))
}

func TestRunFlagsOverrideInvalidEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FOCALCROP_QUALITY", "0")
	t.Setenv("FOCALCROP_WORKERS", "0")

	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	writeTestPNG(t, src, 240, 160)
	out := filepath.Join(dir, "out")

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"-in", src, "-out", out, "-sizes", "sq=50x50:crop", "-quality", "80", "-workers", "1"}, &stdout)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "a-50x50.png"))

	// without the overrides the merged configuration is rejected once
	err = run(context.Background(), []string{"-in", src, "-out", out, "-sizes", "sq=50x50:crop", "-workers", "1"}, &stdout)
	assert.ErrorContains(t, err, "invalid configuration")
	assert.ErrorContains(t, err, "output.quality")
}

func TestRunErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var stdout bytes.Buffer
	assert.Error(t, run(context.Background(), nil, &stdout))
	assert.Error(t, run(context.Background(), []string{"-in", "x.png", "-backend", "magick"}, &stdout))
	assert.Error(t, run(context.Background(), []string{"-in", "x.png", "-sizes", "bad"}, &stdout))
	assert.Error(t, run(context.Background(), []string{"-in", filepath.Join(t.TempDir(), "missing.png")}, &stdout))
	assert.Error(t, run(context.Background(), []string{"-in", t.TempDir()}, &stdout))
}

func TestTargetSizes(t *testing.T) {
	cfg := config.Default()
	sizes, err := targetSizes(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, thumbnail.DefaultSizes(), sizes)

	sizes, err = targetSizes(cfg, "64x64:crop")
	require.NoError(t, err)
	assert.Equal(t, []thumbnail.Size{{Name: "64x64", Width: 64, Height: 64, Crop: true}}, sizes)
}
