// Package backend defines the pixel primitives the focal point analysis needs
// from an image library, and a registry of the available implementations.
package backend

import (
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/menta2k/focalcrop/pkg/colorspace"
	"github.com/menta2k/focalcrop/pkg/types"
)

// RegionFeatureProvider is the view of a decoded image used by the analysis
type RegionFeatureProvider interface {
	// Size returns the current pixel dimensions
	Size() types.Dimensions
	// Smooth applies a noise reduction filter to the whole image in place
	Smooth(strength int) error
	// AverageColor returns the mean color of a region
	AverageColor(r types.Region) (colorspace.RGB, error)
	// Entropy returns the Shannon entropy of the greyscale edge map of a region
	Entropy(r types.Region) (float64, error)
}

// Image is a decoded, in-memory image owned by one caller at a time
type Image interface {
	RegionFeatureProvider

	// Clone returns a deep copy. Mutating the copy never affects the receiver.
	Clone() Image
	// ResizeAndCrop returns a new image made by scaling the src rectangle to dstW x dstH
	ResizeAndCrop(src types.Region, dstW, dstH int) (Image, error)
	// Image exposes the pixels for encoding
	Image() (image.Image, error)
	// Close releases native resources. The image must not be used afterwards.
	Close() error
}

// Backend creates Images
type Backend interface {
	Name() string
	Load(path string) (Image, error)
	FromImage(img image.Image) (Image, error)
}

var (
	mu       sync.RWMutex
	backends = map[string]Backend{}
)

// Register makes a backend available by name. It panics on duplicates,
// since registration happens from package init.
func Register(b Backend) {
	mu.Lock()
	defer mu.Unlock()

	name := b.Name()
	if _, dup := backends[name]; dup {
		panic(fmt.Sprintf("backend: Register called twice for %q", name))
	}
	backends[name] = b
}

// Get returns a registered backend
func Get(name string) (Backend, error) {
	mu.RLock()
	defer mu.RUnlock()

	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %v)", name, namesLocked())
	}
	return b, nil
}

// Names lists registered backends in sorted order
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateRegion checks that r has a positive area and lies inside an image of size d
func ValidateRegion(op string, d types.Dimensions, r types.Region) error {
	if r.Width <= 0 || r.Height <= 0 {
		return &types.GeometryError{Op: op, Reason: fmt.Sprintf("region %s has zero area", r)}
	}
	if !r.Within(d) {
		return &types.GeometryError{Op: op, Reason: fmt.Sprintf("region %s exceeds image bounds %s", r, d)}
	}
	return nil
}

// ValidateResize checks the arguments of ResizeAndCrop
func ValidateResize(d types.Dimensions, src types.Region, dstW, dstH int) error {
	if err := ValidateRegion("resize", d, src); err != nil {
		return err
	}
	return types.Dimensions{Width: dstW, Height: dstH}.Validate("resize")
}
