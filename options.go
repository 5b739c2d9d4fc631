// SPDX-License-Identifier: MIT

// Functional options for Run and RunLocal.
//
// Constructors panic only on nonsensical values (programmer error); runtime
// conditions such as an invalid N are reported as errors.

package rowmul

import (
	"fmt"
	"log/slog"

	"github.com/katalvlaran/rowmul/comm"
	"github.com/katalvlaran/rowmul/matrix"
)

// Defaults.
const (
	// DefaultMaxDimension bounds N on the coordinator.
	DefaultMaxDimension = 10

	// DefaultRoot is the coordinator rank.
	DefaultRoot = comm.Root
)

const (
	panicMaxDimension = "rowmul: WithMaxDimension: max must be >= 1"
	panicRoot         = "rowmul: WithRoot: rank must be >= 0"
	panicNilFiller    = "rowmul: WithFillers: fillers must be non-nil"
	panicNilLogger    = "rowmul: WithLogger: logger must be non-nil"
	panicNilHook      = "rowmul: WithStateHook: hook must be non-nil"
)

// Option mutates Options. Later options override earlier ones.
type Option func(*Options)

// Options is the resolved configuration of one run.
type Options struct {
	maxDim       int
	root         int
	seed         int64
	fillA, fillB matrix.Filler // nil ⇒ matrix.DefaultFillers(seed)
	logger       *slog.Logger
	hook         func(rank int, s State)
}

// WithMaxDimension sets the largest accepted N (default DefaultMaxDimension).
func WithMaxDimension(limit int) Option {
	if limit < 1 {
		panic(panicMaxDimension)
	}

	return func(o *Options) { o.maxDim = limit }
}

// WithRoot selects the coordinator rank. A root outside the world is
// reported by the first collective as comm.ErrBadRoot.
func WithRoot(rank int) Option {
	if rank < 0 {
		panic(panicRoot)
	}

	return func(o *Options) { o.root = rank }
}

// WithSeed seeds the default random fillers. Seed 0 maps to a fixed default.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.seed = seed }
}

// WithFillers replaces the sources of A and B on the coordinator.
func WithFillers(a, b matrix.Filler) Option {
	if a == nil || b == nil {
		panic(panicNilFiller)
	}

	return func(o *Options) { o.fillA, o.fillB = a, b }
}

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic(panicNilLogger)
	}

	return func(o *Options) { o.logger = l }
}

// WithStateHook registers a callback fired on every state a participant
// enters. Under RunLocal it is called from several goroutines concurrently.
func WithStateHook(hook func(rank int, s State)) Option {
	if hook == nil {
		panic(panicNilHook)
	}

	return func(o *Options) { o.hook = hook }
}

func gatherOptions(opts []Option) Options {
	o := Options{
		maxDim: DefaultMaxDimension,
		root:   DefaultRoot,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fillA == nil {
		a, b := matrix.DefaultFillers(o.seed)
		o.fillA, o.fillB = a, b
	}

	return o
}

// String summarises the options for logs.
func (o Options) String() string {
	return fmt.Sprintf("max=%d root=%d seed=%d", o.maxDim, o.root, o.seed)
}
