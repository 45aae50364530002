package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/pipeline"
	"github.com/spf13/cobra"
)

func newCheckSourcesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-sources",
		Short: "Detect and classify source changes without deciding or alerting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCycle(cmd.Context(), pipeline.ModeSourcesOnly)
		},
	}
}

func newFullCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "full-check",
		Short: "Run a complete check cycle and alert if needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCycle(cmd.Context(), pipeline.ModeFull)
		},
	}
}

// runCycle runs one cycle, prints its report and fails when state could not be saved.
func (a *app) runCycle(parent context.Context, mode pipeline.Mode) error {
	ctx, stop := signal.NotifyContext(contextOrBackground(parent), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := config.LoadRegistry(a.cfg.MonitorConfig.RegistryPath, a.logger)
	if err != nil {
		return err
	}

	svc, err := pipeline.NewService(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	report := svc.Run(ctx, mode, registry)
	if err := a.reporter.RenderCycle(report); err != nil {
		return err
	}
	return report.Err()
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
