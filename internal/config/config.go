package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "FOCALCROP_"

// Config holds the application configuration
type Config struct {
	Analysis AnalysisConfig `json:"analysis"`
	Backend  BackendConfig  `json:"backend"`
	Output   OutputConfig   `json:"output"`
	Batch    BatchConfig    `json:"batch"`
	Log      LogConfig      `json:"log"`
	Sizes    []SizeConfig   `json:"sizes"`
}

// AnalysisConfig holds the focal point analysis parameters
type AnalysisConfig struct {
	SliceCount         int     `json:"slice_count"`
	ColorEntropyWeight float64 `json:"color_entropy_weight"`
	SmoothingStrength  int     `json:"smoothing_strength"`
	// MaxPixels rejects larger sources before decoding. 0 disables the limit.
	MaxPixels int `json:"max_pixels"`
}

// BackendConfig selects the image backend
type BackendConfig struct {
	Name string `json:"name"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format    string `json:"format"`
	Quality   int    `json:"quality"`
	Lossless  bool   `json:"lossless"`
	OutputDir string `json:"output_dir"`
	// Debug writes an overlay image next to each cropped thumbnail
	Debug bool `json:"debug"`
}

// BatchConfig controls directory processing
type BatchConfig struct {
	Workers int `json:"workers"`
}

// LogConfig controls the process logger
type LogConfig struct {
	File  string `json:"file"`
	Debug bool   `json:"debug"`
}

// SizeConfig is one named thumbnail size. A zero side is unbounded unless Crop is set.
type SizeConfig struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Crop   bool   `json:"crop"`
}

// KnownBackends lists the backend names Validate accepts
var KnownBackends = []string{"imaging", "gift", "gocv"}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			SliceCount:         20,
			ColorEntropyWeight: 0.5,
			SmoothingStrength:  7,
			MaxPixels:          100_000_000,
		},
		Backend: BackendConfig{Name: "imaging"},
		Output: OutputConfig{
			Quality:   85,
			OutputDir: "./thumbnails",
		},
		Batch: BatchConfig{Workers: 4},
		Sizes: []SizeConfig{
			{Name: "thumbnail", Width: 150, Height: 150, Crop: true},
			{Name: "medium", Width: 300, Height: 300},
			{Name: "medium_large", Width: 768},
			{Name: "large", Width: 1024, Height: 1024},
		},
	}
}

// Load reads the configuration like Read and validates the result
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read builds the configuration from defaults, the optional JSON file at
// path, a .env file in the working directory and FOCALCROP_* variables, in
// that order. The result is not validated so callers can apply their own
// overrides first.
func Read(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fromFile, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fromFile
	}

	// A missing .env file is not an error
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a JSON file on top of the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	// Sizes in the file replace the default list instead of merging into it
	config.Sizes = nil
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Sizes == nil {
		config.Sizes = Default().Sizes
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from FOCALCROP_* environment variables
func (c *Config) ApplyEnv() error {
	ints := map[string]*int{
		"SLICE_COUNT":        &c.Analysis.SliceCount,
		"SMOOTHING_STRENGTH": &c.Analysis.SmoothingStrength,
		"MAX_PIXELS":         &c.Analysis.MaxPixels,
		"QUALITY":            &c.Output.Quality,
		"WORKERS":            &c.Batch.Workers,
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"LOSSLESS": &c.Output.Lossless,
		"DEBUG":    &c.Log.Debug,
		"OVERLAY":  &c.Output.Debug,
	}
	for key, dst := range bools {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = b
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "WEIGHT"); ok {
		w, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%sWEIGHT: %w", EnvPrefix, err)
		}
		c.Analysis.ColorEntropyWeight = w
	}

	strs := map[string]*string{
		"BACKEND":    &c.Backend.Name,
		"FORMAT":     &c.Output.Format,
		"OUTPUT_DIR": &c.Output.OutputDir,
		"LOG_FILE":   &c.Log.File,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Analysis.SliceCount < 2 {
		return fmt.Errorf("analysis.slice_count must be at least 2")
	}

	if c.Analysis.ColorEntropyWeight < 0 || c.Analysis.ColorEntropyWeight > 1 {
		return fmt.Errorf("analysis.color_entropy_weight must be between 0 and 1")
	}

	if c.Analysis.SmoothingStrength < 0 {
		return fmt.Errorf("analysis.smoothing_strength must not be negative")
	}

	if c.Analysis.MaxPixels < 0 {
		return fmt.Errorf("analysis.max_pixels must not be negative")
	}

	if !isKnownBackend(c.Backend.Name) {
		return fmt.Errorf("backend.name must be one of %v, got %q", KnownBackends, c.Backend.Name)
	}

	switch strings.ToLower(c.Output.Format) {
	case "", "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.format %q is not supported", c.Output.Format)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be positive")
	}

	if len(c.Sizes) == 0 {
		return fmt.Errorf("sizes cannot be empty")
	}

	seen := make(map[string]bool, len(c.Sizes))
	for i, s := range c.Sizes {
		if s.Name == "" {
			return fmt.Errorf("sizes[%d].name cannot be empty", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("sizes[%d].name %q is duplicated", i, s.Name)
		}
		seen[s.Name] = true

		if s.Width < 0 || s.Height < 0 || (s.Width == 0 && s.Height == 0) {
			return fmt.Errorf("sizes[%d] %q needs a positive width or height", i, s.Name)
		}
		if s.Crop && (s.Width == 0 || s.Height == 0) {
			return fmt.Errorf("sizes[%d] %q is cropped and needs both width and height", i, s.Name)
		}
	}

	return nil
}

func isKnownBackend(name string) bool {
	for _, b := range KnownBackends {
		if b == name {
			return true
		}
	}
	return false
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "focalcrop", "config.json")
}
