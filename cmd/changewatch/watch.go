package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/pipeline"
	"github.com/aleister1102/changewatch/internal/scheduler"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var cronSpec string
	var now bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run full check cycles on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schedCfg := a.cfg.SchedulerConfig
			if cronSpec != "" {
				schedCfg.Cron = cronSpec
			}
			if now {
				schedCfg.RunImmediately = true
			}

			svc, err := pipeline.NewService(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			sched, err := scheduler.NewScheduler(schedCfg, func(ctx context.Context) error {
				// The registry is re-read every cycle so edits apply without a restart.
				registry, err := config.LoadRegistry(a.cfg.MonitorConfig.RegistryPath, a.logger)
				if err != nil {
					return err
				}
				report := svc.Run(ctx, pipeline.ModeFull, registry)
				if err := a.reporter.RenderCycle(report); err != nil {
					return err
				}
				return report.Err()
			}, a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return sched.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", "", "override the configured cron spec")
	cmd.Flags().BoolVar(&now, "now", false, "run a cycle immediately on start")
	return cmd
}
