// SPDX-License-Identifier: MIT

package rowmul

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/rowmul/comm"
	"github.com/katalvlaran/rowmul/matrix"
)

// RunLocal runs size participants as goroutines over an in-process world and
// returns the coordinator's product.
//
// The first failure cancels the shared context and aborts the world, so no
// participant is left blocked. When the coordinator failed, its error is
// returned; otherwise the first participant error is.
func RunLocal(ctx context.Context, size, n int, opts ...Option) (*matrix.Dense, error) {
	o := gatherOptions(opts)
	comms, err := comm.NewLocalWorld(size, comm.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("RunLocal: %w", err)
	}

	var (
		result  *matrix.Dense
		rootErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range comms {
		c := c
		g.Go(func() error {
			defer c.Close()
			m, err := Run(gctx, c, n, opts...)
			if c.IsRoot(o.root) {
				result, rootErr = m, err
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if rootErr != nil {
			return nil, rootErr
		}
		return nil, err
	}

	return result, nil
}
