package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/changewatch/internal/common"
	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/aleister1102/changewatch/internal/notifier/discord"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAlert(action models.ActionLevel) Alert {
	return Alert{
		CycleID: "cycle-1",
		Decision: models.Decision{
			Action:            action,
			Summary:           "Assistants v1 is deprecated",
			AffectedConsumers: []string{"billing", "search"},
			RecommendedAction: "Migrate to Assistants v2",
			Details: []models.ConsumerDetail{
				{Consumer: "billing", Changes: []string{"Assistants v1 deprecated"}, Impact: models.LevelHigh},
			},
		},
		Unavailable: []models.ChangeRecord{
			{ProviderName: "Stripe", URL: "https://stripe.example/changelog", Kind: models.ChangeKindUnavailable, PreviousStatus: 200},
		},
		Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func testNotificationConfig(url string) config.NotificationConfig {
	cfg := config.NewDefaultNotificationConfig()
	cfg.DiscordWebhookURL = url
	cfg.TimeoutSeconds = 5
	return cfg
}

func TestDiscordNotifier_Notify(t *testing.T) {
	var received discord.MessagePayload
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n, err := NewDiscordNotifier(testNotificationConfig(server.URL), "changewatch-test", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), sampleAlert(models.ActionNotify)))

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, config.DefaultNotificationUsername, received.Username)
	require.Len(t, received.Embeds, 1)
	embed := received.Embeds[0]
	assert.Equal(t, NotifyEmbedColor, embed.Color)
	assert.Equal(t, "Assistants v1 is deprecated", embed.Description)

	names := make([]string, 0, len(embed.Fields))
	for _, f := range embed.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Affected consumers", "billing (impact: high)", "Recommended action", "Unavailable sources"}, names)
	assert.Contains(t, embed.Fields[3].Value, "https://stripe.example/changelog (status 0)")
}

func TestDiscordNotifier_NoneSendsNothing(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	n, err := NewDiscordNotifier(testNotificationConfig(server.URL), "ua", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), Alert{Decision: models.NoActionDecision()}))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestDiscordNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid Form Body"}`))
	}))
	defer server.Close()

	n, err := NewDiscordNotifier(testNotificationConfig(server.URL), "ua", zerolog.Nop())
	require.NoError(t, err)

	err = n.Notify(context.Background(), sampleAlert(models.ActionUrgent))
	var httpErr *common.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
}

func TestNew_WithoutWebhookIsNop(t *testing.T) {
	n, err := New(config.NewDefaultNotificationConfig(), "ua", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, NopNotifier{}, n)
	assert.NoError(t, n.Notify(context.Background(), sampleAlert(models.ActionUrgent)))
}

func TestBuildAlertPayload_UrgentMentions(t *testing.T) {
	cfg := testNotificationConfig("https://discord.example/webhook")
	cfg.MentionRoleIDs = []string{"123"}

	payload := BuildAlertPayload(sampleAlert(models.ActionUrgent), cfg)
	assert.Equal(t, "<@&123>", payload.Content)
	require.NotNil(t, payload.AllowedMentions)
	assert.Equal(t, []string{"123"}, payload.AllowedMentions.Roles)
	assert.Equal(t, UrgentEmbedColor, payload.Embeds[0].Color)

	notify := BuildAlertPayload(sampleAlert(models.ActionNotify), cfg)
	assert.Empty(t, notify.Content)
}

func TestBuildAlertPayload_FitsLimits(t *testing.T) {
	alert := sampleAlert(models.ActionNotify)
	alert.Decision.Details = nil
	for i := 0; i < 40; i++ {
		alert.Decision.Details = append(alert.Decision.Details, models.ConsumerDetail{
			Consumer: "consumer",
			Changes:  []string{strings.Repeat("change ", 100)},
			Impact:   models.LevelLow,
		})
	}

	payload := BuildAlertPayload(alert, testNotificationConfig("https://discord.example/webhook"))
	assert.NoError(t, discord.ValidatePayload(payload))
	last := payload.Embeds[0].Fields[len(payload.Embeds[0].Fields)-3]
	assert.Equal(t, "More", last.Name)
}
