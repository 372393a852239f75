package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/df07/go-tile-raytracer/pkg/renderer"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// AspectRatio is the width/height ratio of every rendered image
const AspectRatio = 3.0 / 2.0

// Formats lists the export formats accepted by Format
var Formats = []string{"bmp", "png", "tiff"}

// Duration is a time.Duration that reads and writes as a string like "500ms" in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is everything the program needs to know to render and export one image
type Config struct {
	Scene   int      `toml:"scene"`   // Scene id, see scene.ListScenes
	Width   int      `toml:"width"`   // Image width; height follows the aspect ratio
	Samples int      `toml:"samples"` // Samples per pixel
	Depth   int      `toml:"depth"`   // Maximum ray recursion depth
	Workers int      `toml:"workers"` // Render workers, 0 for one per core minus two
	Seed    int64    `toml:"seed"`    // Sampler seed, 0 to seed from the clock
	Refresh Duration `toml:"refresh"` // Interval between presented frames

	Out    string `toml:"out"`    // Export directory
	Format string `toml:"format"` // Export format: bmp, png or tiff
	Window bool   `toml:"window"` // Open a desktop preview window
	Serve  string `toml:"serve"`  // Listen address for the web preview, empty to disable
}

// Default returns the configuration used when nothing else is given
func Default() Config {
	return Config{
		Scene:   3,
		Width:   400,
		Samples: 50,
		Depth:   50,
		Refresh: Duration{time.Second},
		Out:     "images",
		Format:  "bmp",
	}
}

// LoadFile reads a TOML file over cfg; keys missing from the file keep their current values
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	decoder := toml.NewDecoder(bufio.NewReader(f))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return fmt.Errorf("%w: %s: %s", ErrInvalid, path, strictErr.String())
		}
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// Marshal encodes the configuration as TOML
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports the first field that would make rendering impossible
func (c Config) Validate() error {
	switch {
	case c.Scene == 0:
		return fmt.Errorf("%w: scene must be non-zero", ErrInvalid)
	case c.Width <= 0:
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalid, c.Width)
	case c.Height() <= 0:
		return fmt.Errorf("%w: width %d gives an empty image", ErrInvalid, c.Width)
	case c.Samples <= 0:
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalid, c.Samples)
	case c.Depth <= 0:
		return fmt.Errorf("%w: depth must be positive, got %d", ErrInvalid, c.Depth)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	case c.Refresh.Duration < 0:
		return fmt.Errorf("%w: refresh must not be negative, got %s", ErrInvalid, c.Refresh)
	}

	if !isFormat(c.Format) {
		return fmt.Errorf("%w: format %q, expected one of %s", ErrInvalid, c.Format, strings.Join(Formats, ", "))
	}
	return nil
}

// Height returns the image height for the configured width
func (c Config) Height() int {
	return int(float64(c.Width) / AspectRatio)
}

// ExportPath returns the file the finished image is written to
func (c Config) ExportPath() string {
	name := fmt.Sprintf("sc%d_w%d_s%d_d%d.%s", c.Scene, c.Width, c.Samples, c.Depth, c.Format)
	return filepath.Join(c.Out, name)
}

// PassConfig converts the configuration into renderer settings
func (c Config) PassConfig() renderer.PassConfig {
	return renderer.PassConfig{
		Width:           c.Width,
		Height:          c.Height(),
		SamplesPerPixel: c.Samples,
		MaxDepth:        c.Depth,
		Workers:         c.Workers,
		Seed:            c.Seed,
		RefreshInterval: c.Refresh.Duration,
	}
}

func isFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}
