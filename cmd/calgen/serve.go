package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"calgen/internal/definition"
	appLog "calgen/internal/log"
	"calgen/internal/pipeline"
	"calgen/internal/scheduler"
	"calgen/internal/web"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve calendars over HTTP and re-render on a schedule",
		Long: `Serve exposes the calendar pages, the occurrence list and an iCalendar
feed over HTTP. The definitions file is reloaded when it changes. If a
refresh schedule is configured, the configured outputs are re-rendered into
the output directory on that schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}

			b, err := pipeline.NewBuilder(cfg, nil)
			if err != nil {
				return err
			}
			srv, err := web.NewServer(cfg, b)
			if err != nil {
				return err
			}

			var sched *scheduler.Scheduler
			if cfg.Refresh != "" {
				outputs, err := pipeline.ParseOutputs(cfg.Outputs)
				if err != nil {
					return err
				}
				groups := func() ([]definition.Group, error) {
					return pipeline.Select(srv.Groups(), cfg.Groups)
				}
				job := scheduler.RenderJob(b, groups, cfg.Year, cfg.Years, outputs, cfg.OutputDir)
				if sched, err = scheduler.New(cfg.Refresh, job); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error { return srv.Serve(ctx) })
			eg.Go(func() error { return srv.Watch(ctx) })
			if sched != nil {
				eg.Go(func() error { return sched.Run(ctx) })
			}

			if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			appLog.Info("calgen exiting")
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	return cmd
}
