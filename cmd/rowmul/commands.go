// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/rowmul"
	"github.com/katalvlaran/rowmul/comm"
)

func (a *app) localCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Run every participant as a goroutine in this process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.runContext(cmd.Context())
			defer cancel()

			n := a.dimension()
			start := time.Now()
			m, err := rowmul.RunLocal(ctx, a.cfg.Participants, n, a.cfg.RunOptions(a.log)...)

			return a.report(m, time.Since(start), err)
		},
	}
	a.runFlags(cmd.Flags())
	cmd.Flags().IntVar(&a.flagCfg.Root, "root", a.flagCfg.Root, "coordinator rank")

	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the hub as rank 0 and coordinate peers joining over websockets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.runContext(cmd.Context())
			defer cancel()

			return a.serve(ctx)
		},
	}
	a.runFlags(cmd.Flags())
	cmd.Flags().StringVar(&a.flagCfg.Listen, "listen", a.flagCfg.Listen, "listen address")
	cmd.Flags().StringVar(&a.flagCfg.Path, "path", a.flagCfg.Path, "HTTP path of the hub")

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	hub, err := comm.NewHub(a.cfg.Participants, comm.WithLogger(a.log))
	if err != nil {
		return err
	}
	defer hub.Comm().Close()

	mux := http.NewServeMux()
	mux.Handle(a.cfg.Path, hub)
	ln, err := net.Listen("tcp", a.cfg.Listen)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: comm.DefaultHandshakeTimeout}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("hub server stopped", "err", err)
		}
	}()
	defer srv.Close()

	a.log.Info("waiting for peers", "addr", ln.Addr().String(), "path", a.cfg.Path, "peers", a.cfg.Participants-1)
	if err := hub.Wait(ctx); err != nil {
		return err
	}

	n := a.dimension()
	opts := append(a.cfg.RunOptions(a.log), rowmul.WithRoot(comm.Root))
	start := time.Now()
	m, err := rowmul.Run(ctx, hub.Comm(), n, opts...)

	return a.report(m, time.Since(start), err)
}

func (a *app) joinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a hub as one participant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.runContext(cmd.Context())
			defer cancel()

			c, err := comm.Dial(ctx, a.cfg.URL, a.cfg.Rank, comm.WithLogger(a.log))
			if err != nil {
				return err
			}
			defer c.Close()

			// Only the coordinator reads N; peers learn it from the broadcast.
			_, err = rowmul.Run(ctx, c, 0, rowmul.WithRoot(comm.Root), rowmul.WithLogger(a.log))
			if err != nil {
				return err
			}
			a.log.Info("participant done", "rank", c.Rank())

			return nil
		},
	}
	cmd.Flags().StringVar(&a.flagCfg.URL, "url", a.flagCfg.URL, "websocket URL of the hub")
	cmd.Flags().IntVar(&a.flagCfg.Rank, "rank", a.flagCfg.Rank, "this participant's rank (>= 1)")

	return cmd
}
