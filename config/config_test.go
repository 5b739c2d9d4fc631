// SPDX-License-Identifier: MIT

package config_test

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/katalvlaran/rowmul/config"
	"github.com/katalvlaran/rowmul/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

// TestDefault_Valid: the built-in configuration passes validation.
func TestDefault_Valid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.MaxDimension)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Zero(t, cfg.TimeoutDuration())
}

// TestLoad_TOML overlays a file onto the defaults.
func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "run.toml", `
participants  = 3
dimension     = 6
seed          = 42
log_level     = "debug"
timeout       = "1m30s"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Participants)
	assert.Equal(t, 6, cfg.Dimension)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, 90*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, "/ws", cfg.Path, "untouched keys keep defaults")
}

// TestLoad_YAML reads both yaml extensions, including an empty file.
func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "run.yaml", "participants: 2\nurl: ws://hub:9000/ws\nrank: 1\nfill_low: -5\nfill_high: 5\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Participants)
	assert.Equal(t, "ws://hub:9000/ws", cfg.URL)
	assert.Equal(t, int64(-5), cfg.FillLow)

	empty, err := config.Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), empty)
}

// TestLoad_Rejects covers unknown keys, formats, missing files and bad values.
func TestLoad_Rejects(t *testing.T) {
	_, err := config.Load(writeFile(t, "run.toml", "participantz = 3\n"))
	require.Error(t, err)

	_, err = config.Load(writeFile(t, "run.yaml", "bogus: 1\n"))
	require.Error(t, err)

	_, err = config.Load(writeFile(t, "run.json", "{}"))
	require.ErrorIs(t, err, config.ErrUnsupportedFormat)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = config.Load(writeFile(t, "run.toml", "participants = 0\n"))
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

// TestValidate_Table pins each cross-field rule.
func TestValidate_Table(t *testing.T) {
	cases := map[string]func(*config.Config){
		"no participants": func(c *config.Config) { c.Participants = 0 },
		"root too large":  func(c *config.Config) { c.Root = c.Participants },
		"zero max":        func(c *config.Config) { c.MaxDimension = 0 },
		"fill inverted":   func(c *config.Config) { c.FillLow, c.FillHigh = 5, 4 },
		"fill too wide":   func(c *config.Config) { c.FillLow, c.FillHigh = -10, math.MaxInt64 },
		"negative rank":   func(c *config.Config) { c.Rank = -1 },
		"relative path":   func(c *config.Config) { c.Path = "ws" },
		"bad level":       func(c *config.Config) { c.LogLevel = "loud" },
		"bad timeout":     func(c *config.Config) { c.Timeout = "soon" },
		"neg timeout":     func(c *config.Config) { c.Timeout = "-1s" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}
}

// TestFillers_MatchDefaults: the default range reproduces the library fill.
func TestFillers_MatchDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 7
	ca, cb := cfg.Fillers()
	da, db := matrix.DefaultFillers(7)

	for _, pair := range [][2]matrix.Filler{{ca, da}, {cb, db}} {
		x, _ := matrix.NewSquare(4)
		y, _ := matrix.NewSquare(4)
		require.NoError(t, pair[0].Fill(x))
		require.NoError(t, pair[1].Fill(y))
		require.True(t, x.Equal(y))
	}
	require.Len(t, cfg.RunOptions(slog.Default()), 5)
}

// TestFillers_ZeroRange keeps an explicit 0..0 range instead of the defaults.
func TestFillers_ZeroRange(t *testing.T) {
	cfg := config.Default()
	cfg.FillLow, cfg.FillHigh = 0, 0
	require.NoError(t, cfg.Validate())

	a, b := cfg.Fillers()
	for _, f := range []matrix.Filler{a, b} {
		m, err := matrix.NewSquare(3)
		require.NoError(t, err)
		require.NoError(t, f.Fill(m))
		require.Equal(t, make([]int64, 9), m.Data())
	}
}
