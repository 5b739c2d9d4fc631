// SPDX-License-Identifier: MIT

// Package comm is the message-passing runtime of a row-partitioned run.
//
// A run has a fixed number of participants identified by rank in [0, size).
// Participants share no memory; they meet only in blocking collectives:
//
//   - Broadcast / BroadcastInt: the root's payload reaches every rank.
//   - Gather: every rank's row block reaches the root, keyed by sender.
//   - Barrier: nobody leaves until everybody arrived.
//   - Abort: poisons the run; every blocked or future collective fails.
//
// All collectives are barriers: no participant returns from one before every
// participant has entered it. Each Comm numbers its collectives, so a message
// that belongs to a different collective is detected and reported as
// ErrCollectiveDesync instead of being silently consumed.
//
// Two transports are provided: NewLocalWorld (goroutines joined by channels)
// and the websocket Hub/Dial pair for one process per participant.
package comm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/katalvlaran/rowmul/partition"
)

// Root is the conventional coordinator rank.
const Root = 0

// anySender lets await accept a message from any rank but its own.
const anySender = -1

// Transport moves messages between participants of one world.
//
// Recv returns an error wrapping ErrAborted once the world has been aborted
// and no buffered message remains. Abort must be idempotent and must release
// every participant blocked in Recv.
type Transport interface {
	Send(ctx context.Context, m Message) error
	Recv(ctx context.Context) (Message, error)
	Abort(cause error) error
	Close() error
}

// Comm is one participant's handle on the world.
// Collectives on one Comm are serialized; all participants must call the same
// collectives in the same order with the same root.
type Comm struct {
	rank, size int
	tr         Transport
	log        *slog.Logger

	mu      sync.Mutex
	seq     uint64
	backlog []Message // messages of later collectives that arrived early
	closed  bool
}

// New wraps tr as participant rank of a size-participant world.
func New(rank, size int, tr Transport, opts ...Option) (*Comm, error) {
	if size < 1 {
		return nil, fmt.Errorf("New(size=%d): %w", size, ErrBadSize)
	}
	if rank < 0 || rank >= size {
		return nil, fmt.Errorf("New(rank=%d,size=%d): %w", rank, size, ErrBadRank)
	}
	if tr == nil {
		return nil, fmt.Errorf("New: %w", ErrNilTransport)
	}
	o := gatherOptions(opts)

	return &Comm{
		rank: rank,
		size: size,
		tr:   tr,
		log:  o.logger.With("rank", rank, "size", size),
	}, nil
}

// Rank returns this participant's rank.
func (c *Comm) Rank() int { return c.rank }

// Size returns the number of participants.
func (c *Comm) Size() int { return c.size }

// IsRoot reports whether this participant is root.
func (c *Comm) IsRoot(root int) bool { return c.rank == root }

// Logger returns the rank-decorated logger.
func (c *Comm) Logger() *slog.Logger { return c.log }

// begin locks the Comm for one collective and allocates its sequence number.
// On success the caller must unlock c.mu.
func (c *Comm) begin(op string, root int) (uint64, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, fmt.Errorf("%s: %w", op, ErrClosed)
	}
	if root < 0 || root >= c.size {
		c.mu.Unlock()
		return 0, fmt.Errorf("%s(root=%d): %w", op, root, ErrBadRoot)
	}
	c.seq++

	return c.seq, nil
}

// fail makes a collective failure fatal for the whole world.
func (c *Comm) fail(op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)
	if !errors.Is(err, ErrAborted) && !errors.Is(err, ErrClosed) {
		c.log.Error("collective failed, aborting run", "op", op, "err", err)
		_ = c.tr.Abort(err)
	}

	return err
}

// Broadcast delivers the root's data to every participant and returns it.
// The data argument is ignored on non-roots. The result never aliases data.
func (c *Comm) Broadcast(ctx context.Context, root int, data []int64) ([]int64, error) {
	seq, err := c.begin("Broadcast", root)
	if err != nil {
		return nil, err
	}
	defer c.mu.Unlock()

	out, err := c.broadcast(ctx, seq, root, data)
	if err != nil {
		return nil, c.fail("Broadcast", err)
	}
	c.log.Debug("broadcast done", "seq", seq, "root", root, "len", len(out))

	return out, nil
}

func (c *Comm) broadcast(ctx context.Context, seq uint64, root int, data []int64) ([]int64, error) {
	if c.rank != root {
		if err := c.tr.Send(ctx, Message{Kind: KindEnter, Seq: seq, From: c.rank, To: root}); err != nil {
			return nil, err
		}
		m, err := c.await(ctx, seq, KindValue, root)
		if err != nil {
			return nil, err
		}
		if m.Data == nil {
			return []int64{}, nil
		}

		return m.Data, nil
	}

	// Root: everybody must have entered before anybody is released.
	seen := make([]bool, c.size)
	for n := 1; n < c.size; n++ {
		m, err := c.await(ctx, seq, KindEnter, anySender)
		if err != nil {
			return nil, err
		}
		if seen[m.From] {
			return nil, fmt.Errorf("duplicate enter from rank %d: %w", m.From, ErrCollectiveDesync)
		}
		seen[m.From] = true
	}
	for r := 0; r < c.size; r++ {
		if r == root {
			continue
		}
		if err := c.tr.Send(ctx, Message{Kind: KindValue, Seq: seq, From: root, To: r, Data: data}); err != nil {
			return nil, err
		}
	}
	out := slices.Clone(data)
	if out == nil {
		out = []int64{}
	}

	return out, nil
}

// BroadcastInt broadcasts a single integer from root.
func (c *Comm) BroadcastInt(ctx context.Context, root, v int) (int, error) {
	out, err := c.Broadcast(ctx, root, []int64{int64(v)})
	if err != nil {
		return 0, err
	}
	if len(out) != 1 {
		return 0, c.fail("BroadcastInt", fmt.Errorf("payload of %d values: %w", len(out), ErrCollectiveDesync))
	}

	return int(out[0]), nil
}

// Barrier returns once every participant has entered it.
func (c *Comm) Barrier(ctx context.Context) error {
	_, err := c.Broadcast(ctx, Root, nil)

	return err
}

// Gather collects every participant's block at root.
//
// The root receives one Part per rank, sorted by rank, its own included;
// arrival order does not matter. Non-roots receive nil. Zero-length blocks
// are legal. No participant returns before root holds every part.
func (c *Comm) Gather(ctx context.Context, root int, r partition.Range, data []int64) ([]Part, error) {
	seq, err := c.begin("Gather", root)
	if err != nil {
		return nil, err
	}
	defer c.mu.Unlock()

	parts, err := c.gather(ctx, seq, root, r, data)
	if err != nil {
		return nil, c.fail("Gather", err)
	}
	c.log.Debug("gather done", "seq", seq, "root", root, "rows", r.String())

	return parts, nil
}

func (c *Comm) gather(ctx context.Context, seq uint64, root int, r partition.Range, data []int64) ([]Part, error) {
	if c.rank != root {
		m := Message{Kind: KindPart, Seq: seq, From: c.rank, To: root, Start: r.Start, End: r.End, Data: data}
		if err := c.tr.Send(ctx, m); err != nil {
			return nil, err
		}
		_, err := c.await(ctx, seq, KindRelease, root)

		return nil, err
	}

	parts := make([]Part, c.size)
	seen := make([]bool, c.size)
	parts[root] = Part{Rank: root, Range: r, Data: slices.Clone(data)}
	seen[root] = true
	for n := 1; n < c.size; n++ {
		m, err := c.await(ctx, seq, KindPart, anySender)
		if err != nil {
			return nil, err
		}
		if seen[m.From] {
			return nil, fmt.Errorf("duplicate part from rank %d: %w", m.From, ErrCollectiveDesync)
		}
		seen[m.From] = true
		parts[m.From] = Part{Rank: m.From, Range: m.Range(), Data: m.Data}
	}
	for rank := 0; rank < c.size; rank++ {
		if rank == root {
			continue
		}
		if err := c.tr.Send(ctx, Message{Kind: KindRelease, Seq: seq, From: root, To: rank}); err != nil {
			return nil, err
		}
	}

	return parts, nil
}

// await returns the next message of collective seq, backlogging messages of
// later collectives. from == anySender accepts any other rank. A Bye means a
// participant left for good, which no collective can survive.
func (c *Comm) await(ctx context.Context, seq uint64, kind Kind, from int) (Message, error) {
	for i, m := range c.backlog {
		if m.Seq < seq {
			return Message{}, fmt.Errorf("stale %v during #%d: %w", m, seq, ErrCollectiveDesync)
		}
		if m.Seq == seq {
			c.backlog = slices.Delete(c.backlog, i, i+1)
			return c.check(m, seq, kind, from)
		}
	}

	for {
		m, err := c.tr.Recv(ctx)
		if err != nil {
			return Message{}, err
		}
		switch {
		case m.Kind == KindBye:
			return Message{}, fmt.Errorf("rank %d left during #%d: %w", m.From, seq, ErrPeerLost)
		case m.Seq < seq:
			return Message{}, fmt.Errorf("stale %v during #%d: %w", m, seq, ErrCollectiveDesync)
		case m.Seq > seq:
			c.backlog = append(c.backlog, m)
			continue
		}

		return c.check(m, seq, kind, from)
	}
}

func (c *Comm) check(m Message, seq uint64, kind Kind, from int) (Message, error) {
	if m.Kind != kind {
		return Message{}, fmt.Errorf("got %v, want %s#%d: %w", m, kind, seq, ErrCollectiveDesync)
	}
	if m.From < 0 || m.From >= c.size || m.From == c.rank || (from != anySender && m.From != from) {
		return Message{}, fmt.Errorf("unexpected sender in %v: %w", m, ErrCollectiveDesync)
	}

	return m, nil
}

// Abort poisons the world with cause. Every participant's blocked and future
// collectives fail with an error wrapping ErrAborted.
func (c *Comm) Abort(cause error) error {
	if cause == nil {
		cause = errors.New("abort requested")
	}
	c.log.Warn("aborting run", "cause", cause)

	return c.tr.Abort(cause)
}

// Close releases the transport. Later collectives return ErrClosed.
// Closing does not abort the other participants.
func (c *Comm) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	return c.tr.Close()
}
