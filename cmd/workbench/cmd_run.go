// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/backend"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/telemetry"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/tui"
)

var (
	metricsAddr   string
	fixturePath   string
	staticRender  bool
	staticCluster bool
	staticWidth   int
)

// shutdownTimeout bounds the metrics server shutdown.
const shutdownTimeout = 2 * time.Second

func runWorkbench(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	static := staticRender || !isTerminal(out)

	logger, err := newLogger(cfg, !static)
	if err != nil {
		return err
	}
	defer logger.Close()

	fixture := fixturePath
	if fixture == "" {
		fixture = cfg.FixturePath()
		if wrote, err := backend.EnsureSample(fixture); err != nil {
			return err
		} else if wrote {
			logger.Info("wrote sample results fixture", "path", fixture)
		}
	}

	a, err := newApp(ctx, cfg, logger, fixture)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("shutdown incomplete", "error", err.Error())
		}
	}()

	if static {
		return renderOnce(ctx, out, a)
	}
	return runInteractive(ctx, a)
}

// renderOnce prints a single frame, optionally after one backend run.
func renderOnce(ctx context.Context, out io.Writer, a *app) error {
	if staticCluster {
		a.runner.Request(a.wb.Selection())
		done := make(chan struct{})
		go func() {
			a.runner.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	_, err := fmt.Fprintln(out, tui.RenderStatic(a.wb, staticWidth))
	return err
}

// runInteractive runs the TUI alongside the fixture watcher and the
// optional metrics server. Quitting the TUI stops everything else.
func runInteractive(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	program := tea.NewProgram(tui.NewModel(a.wb, a.runner), tea.WithAltScreen(), tea.WithContext(ctx))
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	if cfg.Backend.Watch {
		g.Go(func() error {
			if err := a.runner.Watch(ctx); err != nil {
				a.logger.Warn("fixture watch stopped", "error", err.Error())
			}
			return nil
		})
	}

	addr := metricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		srv := &http.Server{Addr: addr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			a.logger.Info("serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	return mux
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
