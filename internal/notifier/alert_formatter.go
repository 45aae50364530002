package notifier

import (
	"fmt"
	"strings"

	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/aleister1102/changewatch/internal/notifier/discord"
)

// BuildAlertPayload renders an alert as a single-embed webhook message. Per-consumer
// details are dropped from the end until the embed fits Discord's limits.
func BuildAlertPayload(alert Alert, cfg config.NotificationConfig) discord.MessagePayload {
	details := alert.Decision.Details
	var embed discord.Embed
	for n := len(details); n >= 0; n-- {
		embed = buildAlertEmbed(alert, n)
		if discord.ValidateEmbed(embed) == nil {
			break
		}
	}

	builder := discord.NewPayloadBuilder().
		WithUsername(cfg.Username).
		AddEmbed(embed)

	if alert.Decision.Action == models.ActionUrgent && cfg.MentionOnUrgent && len(cfg.MentionRoleIDs) > 0 {
		mentions := make([]string, 0, len(cfg.MentionRoleIDs))
		for _, id := range cfg.MentionRoleIDs {
			mentions = append(mentions, fmt.Sprintf("<@&%s>", id))
		}
		builder.WithContent(strings.Join(mentions, " ")).WithRoleMentions(cfg.MentionRoleIDs)
	} else {
		builder.WithRoleMentions([]string{})
	}
	return builder.Build()
}

func buildAlertEmbed(alert Alert, maxDetails int) discord.Embed {
	d := alert.Decision
	builder := discord.NewEmbedBuilder().
		WithTitle(alertTitle(d.Action)).
		WithDescription(discord.Truncate(d.Summary, discord.MaxDescriptionLength)).
		WithColor(alertColor(d.Action)).
		WithTimestamp(alert.Timestamp)

	builder.AddField("Affected consumers", formatList(d.AffectedConsumers, maxListedConsumers, ", "), false)

	for i, detail := range d.Details {
		if i >= maxDetails || i >= discord.MaxFields-4 {
			builder.AddField("More", fmt.Sprintf("%d more consumer(s) not shown", len(d.Details)-i), false)
			break
		}
		builder.AddField(
			fmt.Sprintf("%s (impact: %s)", detail.Consumer, detail.Impact),
			formatBullets(detail.Changes),
			false,
		)
	}

	builder.AddField("Recommended action", d.RecommendedAction, false)
	builder.AddField("Unavailable sources", formatUnavailable(alert.Unavailable), false)

	footer := "changewatch"
	if alert.CycleID != "" {
		footer += " · cycle " + alert.CycleID
	}
	if d.Fallback {
		footer += " · fallback decision"
	}
	builder.WithFooter(footer, "")
	return builder.Build()
}

func alertTitle(action models.ActionLevel) string {
	switch action {
	case models.ActionUrgent:
		return "🚨 Urgent: upstream API changes affect your services"
	case models.ActionNotify:
		return "⚠️ Upstream API changes need review"
	default:
		return "No action needed"
	}
}

func alertColor(action models.ActionLevel) int {
	switch action {
	case models.ActionUrgent:
		return UrgentEmbedColor
	case models.ActionNotify:
		return NotifyEmbedColor
	default:
		return NoneEmbedColor
	}
}

func formatList(items []string, max int, sep string) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) <= max {
		return strings.Join(items, sep)
	}
	return strings.Join(items[:max], sep) + fmt.Sprintf("%s… and %d more", sep, len(items)-max)
}

func formatBullets(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "• "+item)
	}
	return strings.Join(lines, "\n")
}

func formatUnavailable(records []models.ChangeRecord) string {
	if len(records) == 0 {
		return ""
	}
	lines := make([]string, 0, len(records))
	for i, r := range records {
		if i >= maxListedUnavailable {
			lines = append(lines, fmt.Sprintf("… and %d more", len(records)-i))
			break
		}
		lines = append(lines, fmt.Sprintf("%s: %s (status %d)", r.ProviderName, r.URL, r.CurrentStatus))
	}
	return strings.Join(lines, "\n")
}
