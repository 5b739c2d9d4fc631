// SPDX-License-Identifier: MIT

package comm

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// localWorld is the shared state of an in-process world: one inbox per rank
// and a single abort signal.
type localWorld struct {
	inbox []chan Message

	once     sync.Once
	done     chan struct{}
	abortErr error // written once before done is closed
}

func (w *localWorld) abort(cause error) {
	w.once.Do(func() {
		w.abortErr = fmt.Errorf("%w: %w", ErrAborted, cause)
		close(w.done)
	})
}

// localTransport is rank's view of a localWorld.
type localTransport struct {
	w      *localWorld
	rank   int
	closed atomic.Bool
}

// NewLocalWorld builds size communicators joined by buffered channels, one per
// goroutine-participant. comms[i] has rank i.
func NewLocalWorld(size int, opts ...Option) ([]*Comm, error) {
	if size < 1 {
		return nil, fmt.Errorf("NewLocalWorld(size=%d): %w", size, ErrBadSize)
	}
	o := gatherOptions(opts)

	w := &localWorld{inbox: make([]chan Message, size), done: make(chan struct{})}
	for i := range w.inbox {
		w.inbox[i] = make(chan Message, o.inboxFor(size))
	}

	comms := make([]*Comm, size)
	for rank := range comms {
		c, err := New(rank, size, &localTransport{w: w, rank: rank}, opts...)
		if err != nil {
			return nil, err
		}
		comms[rank] = c
	}

	return comms, nil
}

func (t *localTransport) aborted() error {
	select {
	case <-t.w.done:
		return t.w.abortErr
	default:
		return nil
	}
}

// Send copies m.Data so sender and receiver never share a buffer.
func (t *localTransport) Send(ctx context.Context, m Message) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if m.To < 0 || m.To >= len(t.w.inbox) {
		return fmt.Errorf("send to %d: %w", m.To, ErrBadRank)
	}
	if err := t.aborted(); err != nil {
		return err
	}
	m.Data = slices.Clone(m.Data)

	select {
	case t.w.inbox[m.To] <- m:
		return nil
	case <-t.w.done:
		return t.w.abortErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *localTransport) Recv(ctx context.Context) (Message, error) {
	if t.closed.Load() {
		return Message{}, ErrClosed
	}

	return recvOrDone(ctx, t.w.inbox[t.rank], t.w.done, &t.w.abortErr)
}

func (t *localTransport) Abort(cause error) error {
	t.w.abort(cause)

	return nil
}

func (t *localTransport) Close() error {
	t.closed.Store(true)

	return nil
}
