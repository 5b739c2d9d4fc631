// SPDX-License-Identifier: MIT

// Package config holds the run configuration of the rowmul commands.
//
// Values come from Default, optionally overlaid by a TOML or YAML file (Load),
// and finally by command-line flags. Validate reports the first problem as an
// error wrapping ErrInvalidConfig.
//
// Example TOML:
//
//	participants  = 4
//	max_dimension = 10
//	seed          = 42
//	log_level     = "debug"
//	timeout       = "30s"
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
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/rowmul"
	"github.com/katalvlaran/rowmul/matrix"
)

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrUnsupportedFormat is returned by Load for unknown file extensions.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
)

// Config is the full set of knobs for local, serve and join runs.
type Config struct {
	// Participants is the world size P (local and serve).
	Participants int `toml:"participants" yaml:"participants"`
	// Root is the coordinator rank.
	Root int `toml:"root" yaml:"root"`
	// MaxDimension bounds N.
	MaxDimension int `toml:"max_dimension" yaml:"max_dimension"`
	// Dimension is N; 0 means prompt on stdin.
	Dimension int `toml:"dimension" yaml:"dimension"`
	// Seed drives the random fill of A and B.
	Seed int64 `toml:"seed" yaml:"seed"`
	// FillLow and FillHigh bound the random entries, inclusive.
	FillLow  int64 `toml:"fill_low" yaml:"fill_low"`
	FillHigh int64 `toml:"fill_high" yaml:"fill_high"`

	// Listen is the hub's listen address (serve).
	Listen string `toml:"listen" yaml:"listen"`
	// URL is the hub's websocket URL (join).
	URL string `toml:"url" yaml:"url"`
	// Rank is this process's rank (join).
	Rank int `toml:"rank" yaml:"rank"`
	// Path is the HTTP path the hub is mounted on (serve).
	Path string `toml:"path" yaml:"path"`

	// Output is a file for the product; empty prints to stdout.
	Output string `toml:"output" yaml:"output"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// Timeout bounds the whole run as a Go duration; empty means no bound.
	Timeout string `toml:"timeout" yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Participants: 4,
		Root:         rowmul.DefaultRoot,
		MaxDimension: rowmul.DefaultMaxDimension,
		FillLow:      matrix.DefaultFillLow,
		FillHigh:     matrix.DefaultFillHigh,
		Listen:       ":8080",
		URL:          "ws://localhost:8080/ws",
		Rank:         1,
		Path:         "/ws",
		LogLevel:     "info",
	}
}

// Load overlays the file at path onto Default. The format follows the
// extension: .toml, .yaml or .yml. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config.Load: %w", err)
	}
	if err := decode(&cfg, filepath.Ext(path), raw); err != nil {
		return cfg, fmt.Errorf("config.Load(%s): %w", path, err)
	}

	return cfg, cfg.Validate()
}

func decode(cfg *Config, ext string, raw []byte) error {
	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks cross-field consistency. The dimension itself is not
// checked here: the coordinator rejects a bad N at run time for everyone.
func (c Config) Validate() error {
	switch {
	case c.Participants < 1:
		return invalid("participants %d < 1", c.Participants)
	case c.Root < 0 || c.Root >= c.Participants:
		return invalid("root %d outside [0,%d)", c.Root, c.Participants)
	case c.MaxDimension < 1:
		return invalid("max_dimension %d < 1", c.MaxDimension)
	case c.Rank < 0:
		return invalid("rank %d < 0", c.Rank)
	case !strings.HasPrefix(c.Path, "/"):
		return invalid("path %q must start with /", c.Path)
	}
	if err := matrix.ValidateFillRange(c.FillLow, c.FillHigh); err != nil {
		return invalid("fill_low %d, fill_high %d: %v", c.FillLow, c.FillHigh, err)
	}
	if _, err := c.level(); err != nil {
		return invalid("log_level %q: %v", c.LogLevel, err)
	}
	if _, err := c.timeout(); err != nil {
		return invalid("timeout %q: %v", c.Timeout, err)
	}

	return nil
}

func (c Config) level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.LogLevel))

	return l, err
}

func (c Config) timeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err == nil && d < 0 {
		err = errors.New("negative duration")
	}

	return d, err
}

// Level returns the slog level; invalid values fall back to Info.
func (c Config) Level() slog.Level {
	l, err := c.level()
	if err != nil {
		return slog.LevelInfo
	}

	return l
}

// TimeoutDuration returns the run bound; 0 means none.
func (c Config) TimeoutDuration() time.Duration {
	d, err := c.timeout()
	if err != nil {
		return 0
	}

	return d
}

// Fillers returns the random sources of A and B for Seed and the fill range.
// The bounds are used as given, so fill_low = fill_high = 0 yields zeros.
func (c Config) Fillers() (a, b matrix.RandomFiller) {
	a, b = matrix.DefaultFillers(c.Seed)
	a.Lo, a.Hi = c.FillLow, c.FillHigh
	b.Lo, b.Hi = c.FillLow, c.FillHigh

	return a, b
}

// RunOptions translates the configuration into pipeline options.
func (c Config) RunOptions(logger *slog.Logger) []rowmul.Option {
	a, b := c.Fillers()

	return []rowmul.Option{
		rowmul.WithMaxDimension(c.MaxDimension),
		rowmul.WithRoot(c.Root),
		rowmul.WithSeed(c.Seed),
		rowmul.WithFillers(a, b),
		rowmul.WithLogger(logger),
	}
}
