// SPDX-License-Identifier: MIT

package comm_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/katalvlaran/rowmul/comm"
	"github.com/stretchr/testify/require"
)

// testTimeout bounds every collective test so a protocol bug fails instead of hanging.
const testTimeout = 5 * time.Second

func testContext(tb testing.TB) context.Context {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	tb.Cleanup(cancel)

	return ctx
}

// MustWorld builds an in-process world of size ranks or fails the test.
func MustWorld(tb testing.TB, size int) []*comm.Comm {
	tb.Helper()
	comms, err := comm.NewLocalWorld(size)
	require.NoError(tb, err)

	return comms
}

// runAll runs f once per rank concurrently and returns the per-rank errors.
// Unlike errgroup it keeps every error, so tests can assert on each rank.
func runAll(comms []*comm.Comm, f func(c *comm.Comm) error) []error {
	errs := make([]error, len(comms))
	var wg sync.WaitGroup
	for i, c := range comms {
		wg.Add(1)
		go func(i int, c *comm.Comm) {
			defer wg.Done()
			errs[i] = f(c)
		}(i, c)
	}
	wg.Wait()

	return errs
}

// scripted is a Transport that replays a fixed inbound sequence and records
// everything sent. It never blocks.
type scripted struct {
	mu      sync.Mutex
	in      []comm.Message
	sent    []comm.Message
	aborted error
}

var errScriptDone = errors.New("script exhausted")

func (s *scripted) Send(_ context.Context, m comm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)

	return nil
}

func (s *scripted) Recv(context.Context) (comm.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.in) == 0 {
		return comm.Message{}, errScriptDone
	}
	m := s.in[0]
	s.in = s.in[1:]

	return m, nil
}

func (s *scripted) Abort(cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aborted == nil {
		s.aborted = cause
	}

	return nil
}

func (s *scripted) Close() error { return nil }
