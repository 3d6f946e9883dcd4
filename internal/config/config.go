// Package config loads the optional multiwin configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the default config location.
const EnvPath = "MULTIWIN_CONFIG"

type Config struct {
	GL   GL   `yaml:"gl"`
	Drag Drag `yaml:"drag"`
	Host Host `yaml:"host"`
	Log  Log  `yaml:"log"`
}

// GL holds the attributes requested for auxiliary window surfaces. They must
// be compatible with the host's context for sharing to work.
type GL struct {
	Major        int  `yaml:"major"`
	Minor        int  `yaml:"minor"`
	DepthBits    int  `yaml:"depth_bits"`
	StencilBits  int  `yaml:"stencil_bits"`
	ColorBits    int  `yaml:"color_bits"`
	AlphaBits    int  `yaml:"alpha_bits"`
	DoubleBuffer bool `yaml:"double_buffer"`
}

type Drag struct {
	// Inset shrinks the host window rectangle before the inside test, so a
	// window released on the host's border counts as outside.
	Inset int `yaml:"inset"`
}

type Host struct {
	// WindowClass selects the host's main window (WM_CLASS on X11, the
	// window class name on Windows). Empty matches any window of this
	// process that is not an auxiliary window.
	WindowClass string `yaml:"window_class"`
}

type Log struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		GL: GL{
			Major:        4,
			Minor:        5,
			DepthBits:    16,
			StencilBits:  8,
			ColorBits:    8,
			AlphaBits:    0,
			DoubleBuffer: false,
		},
		Drag: Drag{Inset: 10},
		Host: Host{WindowClass: DefaultWindowClass},
		Log:  Log{Level: "info"},
	}
}

func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "multiwin", "config.yaml"), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.GL.Major < 3 || (c.GL.Major == 3 && c.GL.Minor < 2) {
		errs = append(errs, fmt.Errorf("gl: version %d.%d is below 3.2 core", c.GL.Major, c.GL.Minor))
	}
	if c.GL.Minor < 0 {
		errs = append(errs, errors.New("gl.minor must be >= 0"))
	}
	for _, f := range []struct {
		name string
		bits int
	}{
		{"depth_bits", c.GL.DepthBits},
		{"stencil_bits", c.GL.StencilBits},
		{"color_bits", c.GL.ColorBits},
		{"alpha_bits", c.GL.AlphaBits},
	} {
		if f.bits < 0 || f.bits > 32 {
			errs = append(errs, fmt.Errorf("gl.%s must be between 0 and 32, got %d", f.name, f.bits))
		}
	}
	if c.Drag.Inset < 0 {
		errs = append(errs, fmt.Errorf("drag.inset must be >= 0, got %d", c.Drag.Inset))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel maps the configured level name onto slog.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(l.Level) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
