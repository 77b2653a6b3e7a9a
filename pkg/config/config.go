// Package config provides configuration loading and management for opticalscale.
// It handles loading the camera descriptor, the magnification table and the
// display settings from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"opticalscale/internal/models"
	"opticalscale/pkg/visualization"
)

// ErrUnknownMagnification is returned when a magnification name is not in the table
var ErrUnknownMagnification = errors.New("unknown magnification")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Camera is the sensor geometry shared by every magnification entry
	Camera models.Camera `yaml:"camera"`

	// Magnifications is the lookup table of objectives and their stored arrays
	Magnifications []models.Magnification `yaml:"magnifications"`

	// Display parameters
	Display struct {
		// FigureWidth and FigureHeight are the figure size in inches
		FigureWidth  float64 `yaml:"figureWidth"`
		FigureHeight float64 `yaml:"figureHeight"`

		// DPI is the number of canvas pixels per inch
		DPI float64 `yaml:"dpi"`

		// Colormap is used to map intensities to colors ("viridis" or "gray")
		Colormap string `yaml:"colormap"`

		// SquareColor is the accent color of the center square and its labels
		SquareColor string `yaml:"squareColor"`
	} `yaml:"display"`

	// Output parameters
	Output struct {
		// Path is where the rendered view is written
		Path string `yaml:"path"`

		// Viewer is an optional command used to show the rendered view
		Viewer string `yaml:"viewer"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Camera = models.Camera{
		SensorWidth:  1920,
		SensorHeight: 1200,
		PixelSize:    5.86,
	}

	cfg.Magnifications = []models.Magnification{
		{Name: "X5", FileName: "data/x5.npy", Mag: 5},
		{Name: "X10", FileName: "data/x10.npy", Mag: 10},
		{Name: "X20", FileName: "data/x20.npy", Mag: 20},
		{Name: "X50", FileName: "data/x50.npy", Mag: 50},
		{Name: "X100", FileName: "data/x100.npy", Mag: 100},
	}

	cfg.Display.FigureWidth = 10
	cfg.Display.FigureHeight = 6
	cfg.Display.DPI = 100
	cfg.Display.Colormap = "viridis"
	cfg.Display.SquareColor = "red"

	cfg.Output.Path = "optical_view.png"
	cfg.Output.Viewer = ""
	cfg.Output.Verbose = false

	return cfg
}

// Validate checks that the configuration describes a usable optical system
func (c *Config) Validate() error {
	if c.Camera.SensorWidth <= 0 || c.Camera.SensorHeight <= 0 {
		return fmt.Errorf("invalid sensor size %dx%d", c.Camera.SensorWidth, c.Camera.SensorHeight)
	}
	if c.Camera.PixelSize <= 0 {
		return fmt.Errorf("invalid pixel size %g", c.Camera.PixelSize)
	}
	if len(c.Magnifications) == 0 {
		return errors.New("no magnifications configured")
	}

	seen := make(map[string]bool, len(c.Magnifications))
	for _, m := range c.Magnifications {
		key := strings.ToUpper(m.Name)
		if key == "" {
			return errors.New("magnification entry without a name")
		}
		if seen[key] {
			return fmt.Errorf("duplicate magnification %q", m.Name)
		}
		seen[key] = true

		if m.Mag <= 0 {
			return fmt.Errorf("magnification %q: factor must be positive, got %g", m.Name, m.Mag)
		}
		if m.FileName == "" {
			return fmt.Errorf("magnification %q: missing file name", m.Name)
		}
	}

	if c.Display.FigureWidth <= 0 || c.Display.FigureHeight <= 0 || c.Display.DPI <= 0 {
		return fmt.Errorf("invalid figure size %gx%g in at %g dpi",
			c.Display.FigureWidth, c.Display.FigureHeight, c.Display.DPI)
	}

	// Empty values fall back to the figure defaults
	if c.Display.Colormap != "" {
		if _, err := visualization.LookupColormap(c.Display.Colormap); err != nil {
			return fmt.Errorf("display: %w", err)
		}
	}
	if c.Display.SquareColor != "" {
		if _, err := visualization.ParseColor(c.Display.SquareColor); err != nil {
			return fmt.Errorf("display: square color: %w", err)
		}
	}

	return nil
}

// Magnification looks up a table entry by name, ignoring case
func (c *Config) Magnification(name string) (models.Magnification, error) {
	for _, m := range c.Magnifications {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return models.Magnification{}, fmt.Errorf("%w: %q", ErrUnknownMagnification, name)
}

// MagnificationNames lists the configured entries in table order
func (c *Config) MagnificationNames() []string {
	names := make([]string, 0, len(c.Magnifications))
	for _, m := range c.Magnifications {
		names = append(names, m.Name)
	}
	return names
}

// ResolvePaths makes relative array paths relative to baseDir
func (c *Config) ResolvePaths(baseDir string) {
	for i := range c.Magnifications {
		p := c.Magnifications[i].FileName
		if p != "" && !filepath.IsAbs(p) {
			c.Magnifications[i].FileName = filepath.Join(baseDir, p)
		}
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML; a magnification table in the file replaces the default one
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
