package thumbnail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSizes(t *testing.T) {
	sizes := DefaultSizes()
	require.Len(t, sizes, 4)
	assert.Equal(t, Size{Name: "thumbnail", Width: 150, Height: 150, Crop: true}, sizes[0])
	for _, s := range sizes {
		assert.NoError(t, s.Validate(), s.Name)
	}
}

func TestParseSizes(t *testing.T) {
	sizes, err := ParseSizes("thumbnail=150x150:crop, medium=300x300,wide=768x, 64x48")
	require.NoError(t, err)
	assert.Equal(t, []Size{
		{Name: "thumbnail", Width: 150, Height: 150, Crop: true},
		{Name: "medium", Width: 300, Height: 300},
		{Name: "wide", Width: 768},
		{Name: "64x48", Width: 64, Height: 48},
	}, sizes)
}

func TestParseSizesErrors(t *testing.T) {
	for _, spec := range []string{
		"",
		"thumb=150",
		"thumb=ax150",
		"thumb=150x-1",
		"thumb=0x0",
		"thumb=150x0:crop",
		"thumb=150x150:fit",
		"a=10x10,a=20x20",
	} {
		_, err := ParseSizes(spec)
		assert.Error(t, err, spec)
	}
}

func TestSizeString(t *testing.T) {
	assert.Equal(t, "thumbnail=150x150:crop", Size{Name: "thumbnail", Width: 150, Height: 150, Crop: true}.String())
	assert.Equal(t, "medium_large=768x0", Size{Name: "medium_large", Width: 768}.String())

	sizes, err := ParseSizes(DefaultSizes()[0].String())
	require.NoError(t, err)
	assert.Equal(t, DefaultSizes()[:1], sizes)
}
