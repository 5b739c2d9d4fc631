// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/katalvlaran/rowmul"
	"github.com/katalvlaran/rowmul/config"
	"github.com/katalvlaran/rowmul/matrix"
)

// app carries the streams and the resolved configuration of one invocation.
type app struct {
	in          io.Reader
	out, errOut io.Writer

	cfgPath string
	flagCfg config.Config // flag-bound values, applied over the file when set
	cfg     config.Config
	log     *slog.Logger
}

func newApp(in io.Reader, out, errw io.Writer) *app {
	return &app{in: in, out: out, errOut: errw, flagCfg: config.Default()}
}

func (a *app) root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rowmul",
		Short:         "Row-partitioned distributed matrix multiplication",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.resolve(cmd.Flags())
		},
	}
	cmd.SetIn(a.in)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "TOML or YAML configuration file")
	pf.StringVar(&a.flagCfg.LogLevel, "log-level", a.flagCfg.LogLevel, "debug, info, warn or error")
	pf.StringVar(&a.flagCfg.Timeout, "timeout", a.flagCfg.Timeout, "bound on the whole run, e.g. 30s")

	cmd.AddCommand(a.localCmd(), a.serveCmd(), a.joinCmd())

	return cmd
}

// runFlags binds the flags shared by the coordinator-side commands.
func (a *app) runFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&a.flagCfg.Participants, "participants", "p", a.flagCfg.Participants, "number of participants")
	fs.IntVarP(&a.flagCfg.Dimension, "dimension", "n", a.flagCfg.Dimension, "matrix order N (0 prompts)")
	fs.IntVar(&a.flagCfg.MaxDimension, "max", a.flagCfg.MaxDimension, "largest accepted N")
	fs.Int64Var(&a.flagCfg.Seed, "seed", a.flagCfg.Seed, "seed for the random inputs")
	fs.Int64Var(&a.flagCfg.FillLow, "fill-low", a.flagCfg.FillLow, "smallest random entry")
	fs.Int64Var(&a.flagCfg.FillHigh, "fill-high", a.flagCfg.FillHigh, "largest random entry")
	fs.StringVarP(&a.flagCfg.Output, "out", "o", a.flagCfg.Output, "write the product to this file")
}

// resolve merges defaults, the config file and explicitly set flags, then
// builds the logger.
func (a *app) resolve(fs *pflag.FlagSet) error {
	cfg := config.Default()
	if a.cfgPath != "" {
		loaded, err := config.Load(a.cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	overrides := map[string]func(){
		"log-level":    func() { cfg.LogLevel = a.flagCfg.LogLevel },
		"timeout":      func() { cfg.Timeout = a.flagCfg.Timeout },
		"participants": func() { cfg.Participants = a.flagCfg.Participants },
		"dimension":    func() { cfg.Dimension = a.flagCfg.Dimension },
		"max":          func() { cfg.MaxDimension = a.flagCfg.MaxDimension },
		"seed":         func() { cfg.Seed = a.flagCfg.Seed },
		"fill-low":     func() { cfg.FillLow = a.flagCfg.FillLow },
		"fill-high":    func() { cfg.FillHigh = a.flagCfg.FillHigh },
		"out":          func() { cfg.Output = a.flagCfg.Output },
		"root":         func() { cfg.Root = a.flagCfg.Root },
		"listen":       func() { cfg.Listen = a.flagCfg.Listen },
		"path":         func() { cfg.Path = a.flagCfg.Path },
		"url":          func() { cfg.URL = a.flagCfg.URL },
		"rank":         func() { cfg.Rank = a.flagCfg.Rank },
	}
	fs.Visit(func(f *pflag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: cfg.Level()}))

	return nil
}

// runContext returns the run context bounded by the configured timeout.
func (a *app) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	if d := a.cfg.TimeoutDuration(); d > 0 {
		return context.WithTimeout(parent, d)
	}

	return context.WithCancel(parent)
}

// dimension returns the configured N or asks for it.
func (a *app) dimension() int {
	if a.cfg.Dimension != 0 {
		return a.cfg.Dimension
	}

	return promptDimension(a.in, a.out, a.cfg.MaxDimension)
}

// promptDimension asks for N. Unreadable input yields 0, which the
// coordinator rejects like any other invalid size.
func promptDimension(in io.Reader, out io.Writer, limit int) int {
	fmt.Fprintf(out, "Enter the size of the matrix (up to %d): ", limit)
	var n int
	if _, err := fmt.Fscan(in, &n); err != nil {
		return 0
	}

	return n
}

// report prints the coordinator's outcome: the invalid-size notice, or the
// elapsed time and the product (to --out when given).
func (a *app) report(m *matrix.Dense, elapsed time.Duration, err error) error {
	if errors.Is(err, rowmul.ErrInvalidDimension) {
		fmt.Fprintln(a.out, "Invalid matrix size.")
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Execution time: %d microseconds\n", elapsed.Microseconds())
	if a.cfg.Output == "" {
		fmt.Fprintln(a.out, "Multiplied Matrix:")
		return writeRows(a.out, m)
	}

	f, err := os.Create(a.cfg.Output)
	if err != nil {
		return fmt.Errorf("unable to open %s for writing: %w", a.cfg.Output, err)
	}
	if err := writeRows(f, m); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Output written to %s\n", a.cfg.Output)

	return nil
}

// writeRows prints m one row per line, entries separated by spaces.
func writeRows(w io.Writer, m *matrix.Dense) error {
	for i := 0; i < m.Rows(); i++ {
		row, err := m.Row(i)
		if err != nil {
			return err
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, " ")); err != nil {
			return err
		}
	}

	return nil
}
