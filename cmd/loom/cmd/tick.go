// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/loomrt/loom/pkg/fdready"
	"github.com/loomrt/loom/pkg/interrupt"
	"github.com/loomrt/loom/pkg/itimer"
	"github.com/loomrt/loom/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// loggingScheduler stands in for the runtime scheduler so the timer loop
// can be observed from a terminal: it counts the requests the tick
// context issues and logs them.
type loggingScheduler struct {
	logger logging.Logger

	contextSwitches atomic.Int64
	idleGCs         atomic.Int64
}

func (s *loggingScheduler) ContextSwitchAll() {
	s.logger.Debugf("scheduler: context switch request %d", s.contextSwitches.Inc())
}

func (s *loggingScheduler) RequestIdleGC() {
	s.logger.Infof("scheduler: idle gc request %d", s.idleGCs.Inc())
}

func (s *loggingScheduler) ProfilerActive() bool { return false }

func (c *command) initTickCmd() (err error) {
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run the interval timer service",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if len(args) > 0 {
				return cmd.Help()
			}
			if err := c.config.BindPFlags(cmd.Flags()); err != nil {
				return err
			}

			logger, err := newLogger(cmd, c.config.GetString(optionNameVerbosity))
			if err != nil {
				return fmt.Errorf("new logger: %w", err)
			}

			registry := interrupt.NewRegistry()
			sched := &loggingScheduler{logger: logger}
			svc := itimer.New(itimer.Config{
				TickInterval:       c.config.GetDuration(optionNameTickInterval),
				ContextSwitchTicks: c.config.GetInt(optionNameContextSwitchTicks),
				IdleGCDelay:        c.config.GetDuration(optionNameIdleGCDelay),
				DoIdleGC:           c.config.GetBool(optionNameIdleGCEnable),
			}, sched, nil, registry, logger)
			svc.Start()

			promRegistry := prometheus.NewRegistry()
			promRegistry.MustRegister(svc.Metrics()...)
			promRegistry.MustRegister(fdready.Metrics()...)

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
			metricsServer := &http.Server{
				Addr:    c.config.GetString(optionNameMetricsAddr),
				Handler: mux,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Infof("metrics address: %s", metricsServer.Addr)
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("metrics server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				logger.Info("shutting down")

				sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				return metricsServer.Shutdown(sctx)
			})

			err = g.Wait()

			svc.Stop()
			svc.Exit(true)
			if cerr := registry.Close(); cerr != nil {
				err = multierror.Append(err, cerr).ErrorOrNil()
			}
			return err
		},
	}

	cmd.Flags().Duration(optionNameTickInterval, 10*time.Millisecond, "platform ticker period, 0 disables the timer")
	cmd.Flags().Int(optionNameContextSwitchTicks, 2, "ticks between preemptive context switch requests, 0 disables preemption")
	cmd.Flags().Duration(optionNameIdleGCDelay, 300*time.Millisecond, "inactivity period before an idle GC is requested")
	cmd.Flags().Bool(optionNameIdleGCEnable, true, "request a garbage collection after sustained inactivity")
	cmd.Flags().String(optionNameMetricsAddr, ":1655", "metrics HTTP listen address")
	cmd.Flags().String(optionNameVerbosity, "info", "log verbosity level 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace")

	c.root.AddCommand(cmd)
	return nil
}
