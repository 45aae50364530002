package notifier

import (
	"context"
	"time"

	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/rs/zerolog"
)

// Alert is what a cycle hands to the notification boundary.
type Alert struct {
	CycleID     string
	Decision    models.Decision
	Unavailable []models.ChangeRecord
	Timestamp   time.Time
}

// Notifier delivers alerts. Implementations must send nothing for action none.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// NopNotifier discards every alert.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Alert) error { return nil }

// New returns a Discord notifier, or a NopNotifier when no webhook is configured.
func New(cfg config.NotificationConfig, userAgent string, logger zerolog.Logger) (Notifier, error) {
	if cfg.DiscordWebhookURL == "" {
		logger.Info().Msg("Discord webhook URL is not configured, notifications disabled")
		return NopNotifier{}, nil
	}
	return NewDiscordNotifier(cfg, userAgent, logger)
}
