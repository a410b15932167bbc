// Package config loads cinegrade-mcp settings from a single YAML file.
//
// The file is named by the --config flag or the CINEGRADE_CONFIG environment
// variable. Without either, Default is used as-is. Values in the file are
// merged over the defaults, then ${VAR} and ${VAR:-default} patterns in
// output_dir are expanded.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/cinegrade-mcp/internal/acquire"
	"github.com/ironsheep/cinegrade-mcp/internal/export"
)

// EnvConfig names the environment variable holding the config file path.
const EnvConfig = "CINEGRADE_CONFIG"

// Config is the full runtime configuration.
type Config struct {
	// OutputDir receives every exported artifact.
	OutputDir string `yaml:"output_dir"`

	Fetch  FetchConfig  `yaml:"fetch"`
	Export ExportConfig `yaml:"export"`
	Log    LogConfig    `yaml:"log"`
}

// FetchConfig bounds source acquisition.
type FetchConfig struct {
	// Timeout is a Go duration string. Default: 30s
	Timeout string `yaml:"timeout"`

	// MaxBytes caps the source payload. Default: 64 MiB
	MaxBytes int64 `yaml:"max_bytes"`

	// MaxPixels caps the decoded canvas. Default: 100 megapixels
	MaxPixels int64 `yaml:"max_pixels"`
}

// ExportConfig tunes the artifact encoders.
type ExportConfig struct {
	// JPEGQuality applies to the preview and the comparison. Default: 95
	JPEGQuality int `yaml:"jpeg_quality"`

	// ProgressivePreview writes the web preview as progressive JPEG.
	ProgressivePreview bool `yaml:"progressive_preview"`

	Caption CaptionConfig `yaml:"caption"`
}

// CaptionConfig styles the comparison labels.
type CaptionConfig struct {
	Fill    string `yaml:"fill"`
	Outline string `yaml:"outline"`
	Scale   int    `yaml:"scale"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error. CINEGRADE_LOG_LEVEL overrides it.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir: "outputs/hdr",
		Fetch: FetchConfig{
			Timeout:   acquire.DefaultTimeout.String(),
			MaxBytes:  acquire.DefaultMaxBytes,
			MaxPixels: acquire.DefaultMaxPixels,
		},
		Export: ExportConfig{
			JPEGQuality:        export.DefaultJPEGQuality,
			ProgressivePreview: true,
			Caption: CaptionConfig{
				Fill:    "#000000",
				Outline: "#FFFFFF",
				Scale:   3,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the file named by CINEGRADE_CONFIG, or returns Default when the
// variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile merges the YAML file at path over Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) expandVariables() {
	c.OutputDir = expandVars(c.OutputDir)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// FetchTimeout parses Fetch.Timeout.
func (c *Config) FetchTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil {
		return 0, fmt.Errorf("fetch.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("fetch.timeout must be positive, got %s", c.Fetch.Timeout)
	}
	return d, nil
}

// CaptionStyle parses the caption colors.
func (c *Config) CaptionStyle() (export.CaptionStyle, error) {
	cc := c.Export.Caption
	return export.ParseCaptionStyle(cc.Fill, cc.Outline, cc.Scale)
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}
	if _, err := c.FetchTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.Fetch.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_bytes must be positive, got %d", c.Fetch.MaxBytes))
	}
	if c.Fetch.MaxPixels <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_pixels must be positive, got %d", c.Fetch.MaxPixels))
	}
	if q := c.Export.JPEGQuality; q < 1 || q > 100 {
		errs = append(errs, fmt.Errorf("export.jpeg_quality must be in [1, 100], got %d", q))
	}
	if _, err := c.CaptionStyle(); err != nil {
		errs = append(errs, fmt.Errorf("export.caption: %w", err))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
