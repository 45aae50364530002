package config

// NotificationConfig configures alert delivery. An empty webhook disables delivery.
type NotificationConfig struct {
	DiscordWebhookURL string   `json:"discord_webhook_url,omitempty" yaml:"discord_webhook_url,omitempty" validate:"omitempty,url"`
	MentionRoleIDs    []string `json:"mention_role_ids,omitempty" yaml:"mention_role_ids,omitempty"`
	MentionOnUrgent   bool     `json:"mention_on_urgent" yaml:"mention_on_urgent"`
	Username          string   `json:"username,omitempty" yaml:"username,omitempty"`
	TimeoutSeconds    int      `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1"`
}

func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		MentionRoleIDs:  []string{},
		MentionOnUrgent: true,
		Username:        DefaultNotificationUsername,
		TimeoutSeconds:  DefaultNotificationTimeoutSeconds,
	}
}
