// Package focalcrop generates thumbnails that keep the most interesting part
// of an image instead of cutting from the center.
//
// The focal point is found with a cheap one-dimensional projection: the image
// is split into equal slices along each axis, every slice is scored by how
// much its color stands out from the image average and by the entropy of its
// edges, and the best slice on each axis gives the focal coordinate. The crop
// is then placed on a rule of thirds line next to that point.
//
// Basic usage:
//
//	fc, err := focalcrop.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outputs, err := fc.ProcessImageFile(ctx, "photo.jpg", "thumbs", thumbnail.DefaultSizes())
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, o := range outputs {
//		fmt.Println(o.Size.Name, o.Path, o.Coordinates.Slice())
//	}
//
// The package consists of these components:
//
//  1. Backend (pkg/backend): pixel primitives with imaging, gift and OpenCV implementations
//  2. Vision (pkg/vision): slice scanning and focal point resolution
//  3. Cropper (pkg/cropper): crop placement, presizing and coordinate rescaling
//  4. Thumbnail (pkg/thumbnail): named sizes, file output and batch processing
package focalcrop

import (
	"context"
	"fmt"
	"image"

	"github.com/menta2k/focalcrop/pkg/analyzer"
	"github.com/menta2k/focalcrop/pkg/backend"
	_ "github.com/menta2k/focalcrop/pkg/backend/giftbackend"
	_ "github.com/menta2k/focalcrop/pkg/backend/gocvbackend"
	"github.com/menta2k/focalcrop/pkg/backend/imagingbackend"
	"github.com/menta2k/focalcrop/pkg/cropper"
	"github.com/menta2k/focalcrop/pkg/thumbnail"
	"github.com/menta2k/focalcrop/pkg/types"
)

// Version of the focalcrop library
const Version = "1.0.0"

// AnalysisSize is the thumbnail size Analyze samples for
var AnalysisSize = types.Dimensions{Width: 150, Height: 150}

type settings struct {
	backend  string
	options  cropper.Options
	output   thumbnail.Options
	logger   cropper.Logger
	analyzer *analyzer.ImageAnalyzer
}

// Option configures New
type Option func(*settings)

// WithBackend selects a registered backend by name
func WithBackend(name string) Option {
	return func(s *settings) { s.backend = name }
}

// WithOptions sets the analysis parameters
func WithOptions(options cropper.Options) Option {
	return func(s *settings) { s.options = options }
}

// WithOutput sets how thumbnails are encoded
func WithOutput(output thumbnail.Options) Option {
	return func(s *settings) { s.output = output }
}

// WithLogger sets the debug logger of the cropper
func WithLogger(logger cropper.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithAnalyzer sets the source validator
func WithAnalyzer(a *analyzer.ImageAnalyzer) Option {
	return func(s *settings) { s.analyzer = a }
}

// FocalCrop provides a high-level interface for focal point analysis and thumbnail generation
type FocalCrop struct {
	backend   backend.Backend
	analyzer  *analyzer.ImageAnalyzer
	cropper   *cropper.SmartCropper
	generator *thumbnail.Generator
}

// New creates a FocalCrop. Without options it uses the imaging backend and the default analysis parameters.
func New(opts ...Option) (*FocalCrop, error) {
	s := settings{
		backend:  imagingbackend.Name,
		options:  cropper.DefaultOptions(),
		analyzer: analyzer.New(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	if err := s.options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	b, err := backend.Get(s.backend)
	if err != nil {
		return nil, err
	}

	smartCropper := cropper.NewWithConfig(s.options)
	smartCropper.SetLogger(s.logger)

	generator := thumbnail.NewGenerator(b, smartCropper, s.output)
	generator.SetAnalyzer(s.analyzer)

	return &FocalCrop{
		backend:   b,
		analyzer:  s.analyzer,
		cropper:   smartCropper,
		generator: generator,
	}, nil
}

// AnalysisResult contains the analysis of one image
type AnalysisResult struct {
	Info   analyzer.ImageInfo `json:"info"`
	Focal  types.FocalPoint   `json:"focal"`
	// Sample is the size the focal point was found on. It is zero when the image was too small to analyse.
	Sample types.Dimensions   `json:"sample"`
}

// CropResult is a cropped thumbnail and the coordinates it was cut from
type CropResult struct {
	Image       image.Image             `json:"-"`
	Coordinates types.ResizeCoordinates `json:"coordinates"`
	Focal       types.FocalPoint        `json:"focal"`
	Cropped     bool                    `json:"cropped"`
}

// Backend returns the name of the active backend
func (fc *FocalCrop) Backend() string {
	return fc.backend.Name()
}

// LoadImage decodes a file with the active backend
func (fc *FocalCrop) LoadImage(path string) (backend.Image, error) {
	return fc.backend.Load(path)
}

// Analyze returns the focal point of img as seen when cropping it to
// AnalysisSize. img is not modified.
func (fc *FocalCrop) Analyze(img image.Image) (types.FocalPoint, error) {
	fp, _, err := fc.AnalyzeFor(img, AnalysisSize.Width, AnalysisSize.Height)
	return fp, err
}

// AnalyzeFor returns the focal point Crop uses for a width x height thumbnail
// of img and the size of the sample it was found on
func (fc *FocalCrop) AnalyzeFor(img image.Image, width, height int) (types.FocalPoint, types.Dimensions, error) {
	working, err := fc.backend.FromImage(img)
	if err != nil {
		return types.FocalPoint{}, types.Dimensions{}, err
	}
	defer working.Close()

	return fc.cropper.FocalPoint(working, types.Dimensions{Width: width, Height: height})
}

// AnalyzeImage returns the image info together with its focal point
func (fc *FocalCrop) AnalyzeImage(img image.Image) (AnalysisResult, error) {
	b := img.Bounds()
	info := fc.analyzer.GetImageInfo(types.Dimensions{Width: b.Dx(), Height: b.Dy()})
	if err := fc.analyzer.ValidateImage(info); err != nil {
		return AnalysisResult{}, err
	}

	focal, sample, err := fc.AnalyzeFor(img, AnalysisSize.Width, AnalysisSize.Height)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("failed to find focal point: %w", err)
	}
	return AnalysisResult{Info: info, Focal: focal, Sample: sample}, nil
}

// Crop produces a width x height thumbnail of img cut around its focal point
func (fc *FocalCrop) Crop(img image.Image, width, height int) (CropResult, error) {
	working, err := fc.backend.FromImage(img)
	if err != nil {
		return CropResult{}, err
	}
	defer working.Close()

	res, err := fc.cropper.Resize(working, width, height, true)
	if err != nil {
		return CropResult{}, err
	}
	defer res.Image.Close()

	out, err := res.Image.Image()
	if err != nil {
		return CropResult{}, err
	}
	return CropResult{
		Image:       out,
		Coordinates: res.Coordinates,
		Focal:       res.Focal,
		Cropped:     res.Cropped,
	}, nil
}

// ProcessImageFile writes every size of inputPath into outputDir
func (fc *FocalCrop) ProcessImageFile(ctx context.Context, inputPath, outputDir string, sizes []thumbnail.Size) ([]thumbnail.Output, error) {
	return fc.generator.Process(ctx, inputPath, outputDir, sizes)
}

// ProcessFiles writes every size of every file, running workers files at a time
func (fc *FocalCrop) ProcessFiles(ctx context.Context, files []string, outputDir string, sizes []thumbnail.Size, workers int) ([]thumbnail.FileResult, error) {
	return fc.generator.ProcessBatch(ctx, files, outputDir, sizes, workers)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
