// SPDX-License-Identifier: MIT

package rowmul

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/rowmul/comm"
	"github.com/katalvlaran/rowmul/matrix"
	"github.com/katalvlaran/rowmul/partition"
)

// Block is one participant's slice of the product: rows Range of C, stored
// row-major with Cols entries per row.
type Block struct {
	Range partition.Range
	Cols  int
	Data  []int64
}

// Rows returns the number of rows in b.
func (b Block) Rows() int { return b.Range.Len() }

// ValidateDimension accepts 1 ≤ n ≤ limit.
func ValidateDimension(n, limit int) error {
	if n < 1 || n > limit {
		return fmt.Errorf("ValidateDimension(n=%d, max=%d): %w", n, limit, ErrInvalidDimension)
	}

	return nil
}

// BroadcastDimension delivers root's n to every participant. It performs no
// validation; the coordinator validates before calling it.
func BroadcastDimension(ctx context.Context, c *comm.Comm, root, n int) (int, error) {
	if c == nil {
		return 0, fmt.Errorf("BroadcastDimension: %w", ErrNilComm)
	}

	return c.BroadcastInt(ctx, root, n)
}

// BroadcastMatrix delivers root's n×n matrix m to every participant. m is
// ignored on non-roots. Every participant returns its own copy.
func BroadcastMatrix(ctx context.Context, c *comm.Comm, root int, m *matrix.Dense, n int) (*matrix.Dense, error) {
	if c == nil {
		return nil, fmt.Errorf("BroadcastMatrix: %w", ErrNilComm)
	}

	var data []int64
	if c.IsRoot(root) {
		if err := matrix.ValidateNotNil(m); err != nil {
			return nil, fmt.Errorf("BroadcastMatrix: %w", err)
		}
		if m.Rows() != n || m.Cols() != n {
			return nil, fmt.Errorf("BroadcastMatrix: %dx%d, want %dx%d: %w", m.Rows(), m.Cols(), n, n, matrix.ErrDimensionMismatch)
		}
		data = m.Data()
	}

	got, err := c.Broadcast(ctx, root, data)
	if err != nil {
		return nil, err
	}
	out, err := matrix.FromData(n, n, got)
	if err != nil {
		return nil, fmt.Errorf("BroadcastMatrix: %w", err)
	}

	return out, nil
}

// ComputeRange returns the rows owned by rank; see partition.ComputeRange.
func ComputeRange(rank, size, n int) (partition.Range, error) {
	return partition.ComputeRange(rank, size, n)
}

// LocalMultiply computes rows r of a×b. a and b must be square and of equal
// order. An empty range yields an empty block.
func LocalMultiply(a, b *matrix.Dense, r partition.Range) (Block, error) {
	if err := matrix.ValidateNotNil(a); err != nil {
		return Block{}, fmt.Errorf("LocalMultiply: %w", err)
	}
	if err := matrix.ValidateNotNil(b); err != nil {
		return Block{}, fmt.Errorf("LocalMultiply: %w", err)
	}
	if err := matrix.ValidateSquare(a); err != nil {
		return Block{}, fmt.Errorf("LocalMultiply: %w", err)
	}
	if err := matrix.ValidateSameShape(a, b); err != nil {
		return Block{}, fmt.Errorf("LocalMultiply: %w", err)
	}

	data, err := matrix.MulRows(a, b, r.Start, r.End)
	if err != nil {
		return Block{}, fmt.Errorf("LocalMultiply%v: %w", r, err)
	}

	return Block{Range: r, Cols: a.Cols(), Data: data}, nil
}

// GatherRows collects every block at root and assembles the n×n product.
// Blocks are placed by their row range, whatever order they arrive in; the
// ranges must tile [0, n) and each block must hold Range.Len()*n values.
// Non-roots return (nil, nil) once root holds every block.
func GatherRows(ctx context.Context, c *comm.Comm, root int, blk Block, n int) (*matrix.Dense, error) {
	if c == nil {
		return nil, fmt.Errorf("GatherRows: %w", ErrNilComm)
	}

	parts, err := c.Gather(ctx, root, blk.Range, blk.Data)
	if err != nil || !c.IsRoot(root) {
		return nil, err
	}

	ranges := make([]partition.Range, len(parts))
	for i, p := range parts {
		if len(p.Data) != p.Range.Len()*n {
			return nil, fmt.Errorf("GatherRows: rank %d sent %d values for rows %v: %w", p.Rank, len(p.Data), p.Range, ErrAssembly)
		}
		ranges[i] = p.Range
	}
	if err := partition.Validate(ranges, n); err != nil {
		return nil, fmt.Errorf("GatherRows: %w: %w", ErrAssembly, err)
	}

	out, err := matrix.NewSquare(n)
	if err != nil {
		return nil, fmt.Errorf("GatherRows: %w", err)
	}
	for _, p := range parts {
		if err := out.SetRowSpan(p.Range.Start, p.Data); err != nil {
			return nil, fmt.Errorf("GatherRows: %w: %w", ErrAssembly, err)
		}
	}

	return out, nil
}

// participant carries one rank through the pipeline.
type participant struct {
	c     *comm.Comm
	o     Options
	log   *slog.Logger
	state State
}

func (p *participant) enter(s State) {
	p.state = s
	p.log.Debug("state", "state", s)
	if p.o.hook != nil {
		p.o.hook(p.c.Rank(), s)
	}
}

// fail makes a local failure fatal for every participant.
func (p *participant) fail(err error) error {
	if !errors.Is(err, comm.ErrAborted) {
		_ = p.c.Abort(err)
	}
	p.log.Error("run failed", "state", p.state, "err", err)

	return err
}

// Run executes the full pipeline for one participant over c.
//
// n is only read on the root, which validates it first; an invalid n aborts
// every participant and Run returns ErrInvalidDimension there (non-roots get
// an error wrapping comm.ErrAborted). The root returns the product; other
// participants return (nil, nil) on success.
func Run(ctx context.Context, c *comm.Comm, n int, opts ...Option) (*matrix.Dense, error) {
	if c == nil {
		return nil, fmt.Errorf("Run: %w", ErrNilComm)
	}
	o := gatherOptions(opts)
	p := &participant{c: c, o: o, log: o.logger.With("rank", c.Rank(), "size", c.Size()), state: Idle}
	root := o.root
	isRoot := c.IsRoot(root)

	if isRoot {
		if err := ValidateDimension(n, o.maxDim); err != nil {
			return nil, p.fail(err)
		}
		p.log.Info("run started", "n", n, "options", o.String())
	}

	dim, err := BroadcastDimension(ctx, c, root, n)
	if err != nil {
		return nil, p.fail(err)
	}
	p.enter(DimensionKnown)

	r, err := ComputeRange(c.Rank(), c.Size(), dim)
	if err != nil {
		return nil, p.fail(err)
	}
	p.enter(RangeComputed)

	var srcA, srcB *matrix.Dense
	if isRoot {
		if srcA, srcB, err = fillInputs(dim, o); err != nil {
			return nil, p.fail(err)
		}
	}
	a, err := BroadcastMatrix(ctx, c, root, srcA, dim)
	if err != nil {
		return nil, p.fail(err)
	}
	b, err := BroadcastMatrix(ctx, c, root, srcB, dim)
	if err != nil {
		return nil, p.fail(err)
	}

	blk, err := LocalMultiply(a, b, r)
	if err != nil {
		return nil, p.fail(err)
	}
	p.enter(LocalComputeDone)

	out, err := GatherRows(ctx, c, root, blk, dim)
	if err != nil {
		return nil, p.fail(err)
	}
	p.enter(Gathered)

	p.enter(Done)
	if isRoot {
		p.log.Info("run complete", "n", dim)
	}

	return out, nil
}

// fillInputs builds A and B on the coordinator.
func fillInputs(n int, o Options) (a, b *matrix.Dense, err error) {
	if a, err = matrix.NewSquare(n); err != nil {
		return nil, nil, err
	}
	if b, err = matrix.NewSquare(n); err != nil {
		return nil, nil, err
	}
	if err = matrix.Fill(a, o.fillA); err != nil {
		return nil, nil, fmt.Errorf("fill A: %w", err)
	}
	if err = matrix.Fill(b, o.fillB); err != nil {
		return nil, nil, fmt.Errorf("fill B: %w", err)
	}

	return a, b, nil
}
