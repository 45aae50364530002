package main

import (
	"errors"
	"time"

	"github.com/aleister1102/changewatch/internal/models"
	"github.com/aleister1102/changewatch/internal/notifier"
	"github.com/spf13/cobra"
)

// sampleDecision is the fixed decision sent by test-alert.
func sampleDecision() models.Decision {
	return models.Decision{
		Action:            models.ActionNotify,
		Summary:           "Test alert from changewatch, no action required",
		AffectedConsumers: []string{"example-service"},
		RecommendedAction: "Nothing to do, this message confirms alert delivery works.",
		Details: []models.ConsumerDetail{
			{Consumer: "example-service", Changes: []string{"Example API v1 deprecated"}, Impact: models.LevelLow},
		},
	}
}

func newTestAlertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test-alert",
		Short: "Send a sample notify alert through the configured notifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := notifier.New(a.cfg.NotificationConfig, a.cfg.MonitorConfig.UserAgent, a.logger)
			if err != nil {
				return err
			}
			if _, disabled := n.(notifier.NopNotifier); disabled {
				return errors.New("no Discord webhook configured (notification_config.discord_webhook_url or $CHANGEWATCH_DISCORD_WEBHOOK)")
			}

			decision := sampleDecision()
			if err := a.reporter.RenderDecision(decision); err != nil {
				return err
			}
			return n.Notify(contextOrBackground(cmd.Context()), notifier.Alert{
				CycleID:   "test-alert",
				Decision:  decision,
				Timestamp: time.Now(),
			})
		},
	}
}
