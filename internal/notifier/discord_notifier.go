package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aleister1102/changewatch/internal/common"
	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/httpclient"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/aleister1102/changewatch/internal/notifier/discord"
	"github.com/rs/zerolog"
)

// DiscordNotifier posts alerts to a Discord webhook.
type DiscordNotifier struct {
	cfg        config.NotificationConfig
	httpClient *httpclient.HTTPClient
	logger     zerolog.Logger
}

// NewDiscordNotifier creates a DiscordNotifier for the configured webhook.
func NewDiscordNotifier(cfg config.NotificationConfig, userAgent string, logger zerolog.Logger) (*DiscordNotifier, error) {
	moduleLogger := logger.With().Str("component", "DiscordNotifier").Logger()

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultNotificationTimeoutSeconds * time.Second
	}
	client, err := httpclient.NewHTTPClientBuilder(moduleLogger).
		WithTimeout(timeout).
		WithUserAgent(userAgent).
		WithHeader("Content-Type", "application/json").
		WithMaxContentSize(64 * 1024).
		Build()
	if err != nil {
		return nil, common.WrapError(err, "failed to create Discord HTTP client")
	}

	return &DiscordNotifier{
		cfg:        cfg,
		httpClient: client,
		logger:     moduleLogger,
	}, nil
}

// Notify sends one embed describing the alert. Action none sends nothing.
func (dn *DiscordNotifier) Notify(ctx context.Context, alert Alert) error {
	if alert.Decision.Action == models.ActionNone {
		dn.logger.Debug().Str("cycle_id", alert.CycleID).Msg("Action is none, no notification sent")
		return nil
	}

	payload := BuildAlertPayload(alert, dn.cfg)
	if err := discord.ValidatePayload(payload); err != nil {
		return common.WrapError(err, "invalid Discord payload")
	}
	return dn.send(ctx, payload)
}

func (dn *DiscordNotifier) send(ctx context.Context, payload discord.MessagePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	resp, err := dn.httpClient.Do(&httpclient.HTTPRequest{
		URL:     dn.cfg.DiscordWebhookURL,
		Method:  http.MethodPost,
		Body:    bytes.NewReader(body),
		Context: ctx,
	})
	if err != nil {
		dn.logger.Error().Err(err).Msg("Failed to send Discord notification")
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		dn.logger.Error().Int("status_code", resp.StatusCode).Str("response_body", string(resp.Body)).Msg("Discord notification failed")
		return common.NewHTTPErrorWithURL(resp.StatusCode, string(resp.Body), "discord webhook")
	}

	dn.logger.Info().Int("status_code", resp.StatusCode).Msg("Discord notification sent successfully")
	return nil
}
