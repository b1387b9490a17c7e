package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/menta2k/focalcrop/internal/utils"
	"github.com/menta2k/focalcrop/pkg/analyzer"
	"github.com/menta2k/focalcrop/pkg/backend"
	"github.com/menta2k/focalcrop/pkg/cropper"
	"github.com/menta2k/focalcrop/pkg/processing"
	"github.com/menta2k/focalcrop/pkg/types"
)

// ErrSourceNotFound is returned when the source file does not exist
var ErrSourceNotFound = errors.New("source image not found")

// Options control how thumbnails are written
type Options struct {
	// Format is jpg, png or webp. Empty keeps the source format when it can be written.
	Format   string
	Quality  int
	Lossless bool
	// Debug writes a PNG overlay of the crop rectangle and focal point for every cropped size
	Debug bool
}

// Output describes one written thumbnail
type Output struct {
	Size        Size                    `json:"size"`
	Path        string                  `json:"path"`
	Coordinates types.ResizeCoordinates `json:"coordinates"`
	Focal       types.FocalPoint        `json:"focal"`
	Cropped     bool                    `json:"cropped"`
	DebugPath   string                  `json:"debug_path,omitempty"`
}

// FileResult holds the outputs of one source in a batch
type FileResult struct {
	Source  string   `json:"source"`
	Outputs []Output `json:"outputs"`
}

// Generator writes thumbnails for source images
type Generator struct {
	backend   backend.Backend
	cropper   *cropper.SmartCropper
	processor *processing.Processor
	analyzer  *analyzer.ImageAnalyzer
	options   Options
}

// NewGenerator creates a Generator
func NewGenerator(b backend.Backend, c *cropper.SmartCropper, options Options) *Generator {
	if options.Quality == 0 {
		options.Quality = 85
	}
	return &Generator{
		backend:   b,
		cropper:   c,
		processor: processing.NewProcessor(),
		analyzer:  analyzer.New(),
		options:   options,
	}
}

// SetAnalyzer replaces the source validator
func (g *Generator) SetAnalyzer(a *analyzer.ImageAnalyzer) {
	g.analyzer = a
}

// Process loads source once, a file path or an http(s) URL, and writes one
// thumbnail per size into outDir as <base>-<W>x<H>.<ext>
func (g *Generator) Process(ctx context.Context, source, outDir string, sizes []Size) ([]Output, error) {
	for _, s := range sizes {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	img, err := g.load(ctx, source)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	if err := utils.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	name := sourceName(source)
	format := g.outputFormat(name)

	outputs := make([]Output, 0, len(sizes))
	for _, s := range sizes {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}
		out, err := g.write(img, name, outDir, format, s)
		if err != nil {
			return outputs, fmt.Errorf("%s: size %s: %w", source, s.Name, err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func (g *Generator) load(ctx context.Context, source string) (backend.Image, error) {
	if processing.IsURL(source) {
		decoded, err := g.processor.LoadImageFromURL(ctx, source)
		if err != nil {
			return nil, err
		}
		info := g.analyzer.GetImageInfo(types.Dimensions{Width: decoded.Bounds().Dx(), Height: decoded.Bounds().Dy()})
		if err := g.analyzer.ValidateImage(info); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		return g.backend.FromImage(decoded)
	}

	if !utils.FileExists(source) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}
	info, err := g.analyzer.Inspect(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if err := g.analyzer.ValidateImage(info); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return g.backend.Load(source)
}

func (g *Generator) write(img backend.Image, name, outDir, format string, s Size) (Output, error) {
	res, err := g.cropper.Resize(img, s.Width, s.Height, s.Crop)
	if err != nil {
		return Output{}, err
	}
	defer res.Image.Close()

	pixels, err := res.Image.Image()
	if err != nil {
		return Output{}, err
	}

	c := res.Coordinates
	out := Output{
		Size:        s,
		Path:        utils.ThumbnailFilename(name, outDir, c.DstW, c.DstH, format),
		Coordinates: c,
		Focal:       res.Focal,
		Cropped:     res.Cropped,
	}
	if err := g.processor.SaveImage(pixels, out.Path, format, g.options.Quality, g.options.Lossless); err != nil {
		return Output{}, fmt.Errorf("failed to save %s: %w", out.Path, err)
	}

	if g.options.Debug && res.Cropped {
		full, err := img.Image()
		if err != nil {
			return Output{}, err
		}
		overlay := g.processor.CreateDebugOverlay(full, c.Source(), res.Focal)
		suffix := "-" + utils.SanitizeFilename(s.Name) + "-debug"
		out.DebugPath = utils.GenerateOutputFilename(name, outDir, "", suffix, "png")
		if err := g.processor.SaveImage(overlay, out.DebugPath, "png", g.options.Quality, false); err != nil {
			return Output{}, fmt.Errorf("failed to save %s: %w", out.DebugPath, err)
		}
	}
	return out, nil
}

// outputFormat picks the encoder for a source file name
func (g *Generator) outputFormat(name string) string {
	if g.options.Format != "" {
		return strings.ToLower(g.options.Format)
	}
	switch ext := utils.GetFileExtension(name); ext {
	case "jpg", "jpeg", "png", "webp":
		return ext
	case "":
		return "jpg"
	default:
		return "png"
	}
}

// sourceName returns the file name part of a path or URL
func sourceName(source string) string {
	if processing.IsURL(source) {
		if u, err := url.Parse(source); err == nil && u.Path != "" && u.Path != "/" {
			return path.Base(u.Path)
		}
		return "image"
	}
	return source
}

// ProcessBatch runs Process for every file with at most workers files in
// flight. The first failure cancels the remaining files; results are
// returned in input order, with files that never ran left empty.
func (g *Generator) ProcessBatch(ctx context.Context, files []string, outDir string, sizes []Size, workers int) ([]FileResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]FileResult, len(files))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, file := range files {
		if ctx.Err() != nil {
			break
		}
		i, file := i, file
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outputs, err := g.Process(ctx, file, outDir, sizes)
			results[i] = FileResult{Source: file, Outputs: outputs}
			return err
		})
	}

	return results, eg.Wait()
}
