package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/menta2k/focalcrop"
	"github.com/menta2k/focalcrop/internal/config"
	"github.com/menta2k/focalcrop/internal/logging"
	"github.com/menta2k/focalcrop/internal/utils"
	"github.com/menta2k/focalcrop/pkg/analyzer"
	"github.com/menta2k/focalcrop/pkg/cropper"
	"github.com/menta2k/focalcrop/pkg/processing"
	"github.com/menta2k/focalcrop/pkg/thumbnail"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "focalcrop:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("focalcrop", flag.ContinueOnError)

	var in, outDir, sizes, backendName, cfgPath, ext, logFile, report string
	var workers, quality, slices, smooth int
	var weight float64
	var lossless, debug, overlay bool

	fs.StringVar(&in, "in", "", "input image, directory or URL (jpg/png/gif/webp/bmp/tiff)")
	fs.StringVar(&outDir, "out", "", "output directory (default from config)")
	fs.StringVar(&sizes, "sizes", "", "comma separated sizes, e.g. thumbnail=150x150:crop,medium=300x300")
	fs.StringVar(&backendName, "backend", "", "image backend: imaging|gift|gocv")
	fs.StringVar(&cfgPath, "config", "", "JSON config file (default ~/.config/focalcrop/config.json when present)")
	fs.IntVar(&workers, "workers", 0, "files processed in parallel")
	fs.StringVar(&ext, "ext", "", "output format: jpg|png|webp (default keeps the source format)")
	fs.IntVar(&quality, "quality", 0, "JPEG/WebP output quality (1-100)")
	fs.BoolVar(&lossless, "lossless", false, "WebP output lossless mode")
	fs.BoolVar(&overlay, "overlay", false, "write a debug overlay for every cropped size")
	fs.BoolVar(&debug, "debug", false, "log analysis details")
	fs.StringVar(&logFile, "logfile", "", "log to a rotated file instead of stderr")
	fs.IntVar(&slices, "slices", 0, "slices per axis")
	fs.Float64Var(&weight, "weight", 0, "color versus entropy weight (0..1)")
	fs.IntVar(&smooth, "smooth", 0, "smoothing strength before analysis")
	fs.StringVar(&report, "report", "", "write a JSON report of all outputs to this file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if in == "" {
		fs.Usage()
		return fmt.Errorf("usage: %s -in image.jpg|dir|URL [-out dir] [-sizes name=WxH[:crop],...] [-backend imaging|gift|gocv]", filepath.Base(os.Args[0]))
	}

	if cfgPath == "" && utils.FileExists(config.GetConfigPath()) {
		cfgPath = config.GetConfigPath()
	}
	cfg, err := config.Read(cfgPath)
	if err != nil {
		return err
	}

	// Flags given on the command line win over the config file and environment
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.Output.OutputDir = outDir
		case "backend":
			cfg.Backend.Name = backendName
		case "workers":
			cfg.Batch.Workers = workers
		case "ext":
			cfg.Output.Format = ext
		case "quality":
			cfg.Output.Quality = quality
		case "lossless":
			cfg.Output.Lossless = lossless
		case "overlay":
			cfg.Output.Debug = overlay
		case "debug":
			cfg.Log.Debug = debug
		case "logfile":
			cfg.Log.File = logFile
		case "slices":
			cfg.Analysis.SliceCount = slices
		case "weight":
			cfg.Analysis.ColorEntropyWeight = weight
		case "smooth":
			cfg.Analysis.SmoothingStrength = smooth
		}
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	closer, err := logging.Setup(cfg.Log.File, cfg.Log.Debug)
	if err != nil {
		return err
	}
	defer closer.Close()
	logging.Debugf("config: %+v", *cfg)

	targets, err := targetSizes(cfg, sizes)
	if err != nil {
		return err
	}
	files, err := inputFiles(in)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found in %s", in)
	}

	fc, err := focalcrop.New(
		focalcrop.WithBackend(cfg.Backend.Name),
		focalcrop.WithOptions(cropper.Options{
			SliceCount:        cfg.Analysis.SliceCount,
			Weight:            cfg.Analysis.ColorEntropyWeight,
			SmoothingStrength: cfg.Analysis.SmoothingStrength,
		}),
		focalcrop.WithOutput(thumbnail.Options{
			Format:   cfg.Output.Format,
			Quality:  cfg.Output.Quality,
			Lossless: cfg.Output.Lossless,
			Debug:    cfg.Output.Debug,
		}),
		focalcrop.WithLogger(cropper.Logger{DebugMode: logging.DebugEnabled(), Log: logging.Logger()}),
		focalcrop.WithAnalyzer(analyzer.NewWithConfig(analyzer.Config{
			SupportedFormats: []string{"jpeg", "png", "gif", "webp", "bmp", "tiff"},
			MinImageSize:     1,
			MaxPixels:        cfg.Analysis.MaxPixels,
		})),
	)
	if err != nil {
		return err
	}

	logging.Printf("processing %d file(s) with %s backend, %d worker(s)", len(files), fc.Backend(), cfg.Batch.Workers)
	results, err := fc.ProcessFiles(ctx, files, cfg.Output.OutputDir, targets, cfg.Batch.Workers)
	summarize(stdout, results)
	if err != nil {
		return err
	}

	if report != "" {
		js, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(report, js, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logging.Printf("wrote %s", report)
	}
	return nil
}

// targetSizes returns the sizes from the -sizes flag, or the configured ones
func targetSizes(cfg *config.Config, spec string) ([]thumbnail.Size, error) {
	if spec != "" {
		return thumbnail.ParseSizes(spec)
	}
	out := make([]thumbnail.Size, 0, len(cfg.Sizes))
	for _, s := range cfg.Sizes {
		out = append(out, thumbnail.Size{Name: s.Name, Width: s.Width, Height: s.Height, Crop: s.Crop})
	}
	return out, nil
}

// inputFiles expands a directory into its image files
func inputFiles(in string) ([]string, error) {
	if processing.IsURL(in) || !utils.DirExists(in) {
		return []string{in}, nil
	}
	return utils.ListImageFiles(in)
}

func summarize(w io.Writer, results []thumbnail.FileResult) {
	var count int
	var total int64
	for _, r := range results {
		for _, o := range r.Outputs {
			count++
			size := "?"
			if st, err := os.Stat(o.Path); err == nil {
				total += st.Size()
				size = utils.FormatFileSize(st.Size())
			}
			c := o.Coordinates
			fmt.Fprintf(w, "%s  %dx%d from %dx%d@%d,%d  %s\n",
				o.Path, c.DstW, c.DstH, c.SrcW, c.SrcH, c.SrcX, c.SrcY, size)
			if o.DebugPath != "" {
				fmt.Fprintf(w, "%s  overlay\n", o.DebugPath)
			}
		}
	}
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(w, "%d thumbnail(s), %s\n", count, utils.FormatFileSize(total))
}
