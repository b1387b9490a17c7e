package processing

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/focalcrop/pkg/types"
)

func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 255 / width), uint8(y * 255 / height), 128, 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveAndLoadImage(t *testing.T) {
	p := NewProcessor()
	dir := t.TempDir()
	img := createTestImage(40, 30)

	for _, format := range []string{"png", "jpg"} {
		path := filepath.Join(dir, "out."+format)
		require.NoError(t, p.SaveImage(img, path, format, 90, false))

		loaded, err := p.LoadImage(path)
		require.NoError(t, err)
		assert.Equal(t, 40, loaded.Bounds().Dx())
		assert.Equal(t, 30, loaded.Bounds().Dy())
	}
}

func TestSaveImageUnsupportedFormat(t *testing.T) {
	p := NewProcessor()
	err := p.SaveImage(createTestImage(4, 4), filepath.Join(t.TempDir(), "x.gif"), "gif", 90, false)
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestLoadImageMissingFile(t *testing.T) {
	_, err := NewProcessor().LoadImage(filepath.Join(t.TempDir(), "nope.jpg"))
	assert.Error(t, err)
}

func TestDecodeImage(t *testing.T) {
	p := NewProcessor()

	img, err := p.DecodeImage(encodePNG(t, createTestImage(8, 6)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())

	_, err = p.DecodeImage([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestLoadImageFromURL(t *testing.T) {
	data := encodePNG(t, createTestImage(12, 9))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/img.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(data)
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewProcessor()
	ctx := context.Background()

	img, err := p.LoadImageFromURL(ctx, srv.URL+"/img.png")
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())

	_, err = p.LoadImageFromURL(ctx, srv.URL+"/page")
	assert.ErrorContains(t, err, "does not point to an image")

	_, err = p.LoadImageFromURL(ctx, srv.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")

	_, err = p.LoadImageFromURL(ctx, "ftp://example.com/a.png")
	assert.ErrorContains(t, err, "unsupported URL scheme")
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/a.jpg"))
	assert.True(t, IsURL("http://example.com/a.jpg"))
	assert.False(t, IsURL("/tmp/a.jpg"))
}

func TestCreateDebugOverlay(t *testing.T) {
	p := NewProcessor()
	img := image.NewNRGBA(image.Rect(0, 0, 200, 100))

	crop := types.Region{X: 50, Y: 0, Width: 100, Height: 100}
	out := p.CreateDebugOverlay(img, crop, types.FocalPoint{X: 0.25, Y: 0.5}).(*image.NRGBA)

	// Crop border
	assert.Equal(t, color.NRGBA{255, 204, 0, 255}, out.NRGBAAt(50, 40))
	// Focal cross at (50, 50) is drawn after the border
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, out.NRGBAAt(48, 50))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, out.NRGBAAt(50, 53))
	// Outside the crop is shaded, inside is left alone
	assert.Equal(t, color.NRGBA{0, 0, 0, 128}, out.NRGBAAt(10, 10))
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(100, 40))
	// Source image is untouched
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(50, 40))
}
