// SPDX-License-Identifier: MIT

package comm

import (
	"fmt"
	"log/slog"
	"time"
)

// DefaultHandshakeTimeout bounds how long the hub waits for a Hello after a
// websocket upgrade, and how long Dial waits for the Welcome.
const DefaultHandshakeTimeout = 10 * time.Second

// Option configures communicators and transports.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	inbox     int // 0 means derive from size
	handshake time.Duration
}

// WithLogger attaches a structured logger; rank attributes are added per Comm.
// Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("comm: WithLogger(nil)")
	}

	return func(o *options) { o.logger = l }
}

// WithInbox sets the per-rank inbound queue capacity. Panics on n < 1.
func WithInbox(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("comm: WithInbox(%d): capacity must be >= 1", n))
	}

	return func(o *options) { o.inbox = n }
}

// WithHandshakeTimeout overrides DefaultHandshakeTimeout. Panics on d <= 0.
func WithHandshakeTimeout(d time.Duration) Option {
	if d <= 0 {
		panic(fmt.Sprintf("comm: WithHandshakeTimeout(%v): must be > 0", d))
	}

	return func(o *options) { o.handshake = d }
}

func gatherOptions(opts []Option) options {
	o := options{logger: slog.Default(), handshake: DefaultHandshakeTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// inboxFor returns the queue capacity for a world of size participants.
// Collectives are barriers, so no rank receives more than two collectives'
// worth of traffic ahead of its own progress.
func (o options) inboxFor(size int) int {
	if o.inbox > 0 {
		return o.inbox
	}

	return 2*size + 1
}
