package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileExtension(t *testing.T) {
	assert.Equal(t, "jpg", GetFileExtension("photo.JPG"))
	assert.Equal(t, "webp", GetFileExtension("/a/b/c.webp"))
	assert.Equal(t, "", GetFileExtension("README"))
}

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.jpg", "a.JPEG", "a.png", "a.gif", "a.tif", "a.webp", "a.bmp"} {
		assert.True(t, IsImageFile(name), name)
	}
	for _, name := range []string{"a.txt", "a", "a.heic"} {
		assert.False(t, IsImageFile(name), name)
	}
}

func TestThumbnailFilename(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "photo-150x150.jpg"), ThumbnailFilename("in/photo.jpg", "out", 150, 150, ""))
	assert.Equal(t, filepath.Join("out", "photo-768x432.webp"), ThumbnailFilename("in/photo.jpg", "out", 768, 432, "WEBP"))
	assert.Equal(t, filepath.Join("out", "noext-10x10.jpg"), ThumbnailFilename("noext", "out", 10, 10, ""))
}

func TestGenerateOutputFilename(t *testing.T) {
	got := GenerateOutputFilename("/x/cat.png", "/tmp", "pre_", "_debug", "png")
	assert.Equal(t, filepath.Join("/tmp", "pre_cat_debug.png"), got)
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"b.jpg", "a.png", "notes.txt", filepath.Join("nested", "c.webp")} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	files, err := ListImageFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "nested", "c.webp"),
	}, files)

	_, err = ListImageFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.jpg")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "nope")))
	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(file))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, DirExists(dir))
	require.NoError(t, EnsureDir(dir))
	assert.NoError(t, EnsureDir(""))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "medium_large", SanitizeFilename("medium large"))
	assert.Equal(t, "a_b_c", SanitizeFilename("a/b:c"))
	assert.Equal(t, "x", SanitizeFilename("..x.."))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(2*1024*1024))
}
