package discord

import "time"

// EmbedBuilder helps in constructing Embed objects.
type EmbedBuilder struct {
	embed Embed
}

func NewEmbedBuilder() *EmbedBuilder {
	return &EmbedBuilder{}
}

func (b *EmbedBuilder) WithTitle(title string) *EmbedBuilder {
	b.embed.Title = title
	return b
}

func (b *EmbedBuilder) WithDescription(description string) *EmbedBuilder {
	b.embed.Description = description
	return b
}

// WithTimestamp formats timestamp as RFC3339.
func (b *EmbedBuilder) WithTimestamp(timestamp time.Time) *EmbedBuilder {
	b.embed.Timestamp = timestamp.UTC().Format(time.RFC3339)
	return b
}

func (b *EmbedBuilder) WithColor(color int) *EmbedBuilder {
	b.embed.Color = color
	return b
}

func (b *EmbedBuilder) WithFooter(text, iconURL string) *EmbedBuilder {
	b.embed.Footer = &EmbedFooter{Text: text, IconURL: iconURL}
	return b
}

// AddField appends a field. Empty values are skipped since Discord rejects them.
func (b *EmbedBuilder) AddField(name, value string, inline bool) *EmbedBuilder {
	if value == "" {
		return b
	}
	b.embed.Fields = append(b.embed.Fields, EmbedField{
		Name:   Truncate(name, MaxFieldNameLength),
		Value:  Truncate(value, MaxFieldValueLength),
		Inline: inline,
	})
	return b
}

func (b *EmbedBuilder) Build() Embed {
	return b.embed
}

// PayloadBuilder helps in constructing MessagePayload objects.
type PayloadBuilder struct {
	payload MessagePayload
}

func NewPayloadBuilder() *PayloadBuilder {
	return &PayloadBuilder{}
}

func (b *PayloadBuilder) WithContent(content string) *PayloadBuilder {
	b.payload.Content = content
	return b
}

func (b *PayloadBuilder) WithUsername(username string) *PayloadBuilder {
	b.payload.Username = username
	return b
}

func (b *PayloadBuilder) AddEmbed(embed Embed) *PayloadBuilder {
	b.payload.Embeds = append(b.payload.Embeds, embed)
	return b
}

// WithRoleMentions allows only the given roles to be pinged. An empty list disables
// every mention.
func (b *PayloadBuilder) WithRoleMentions(roleIDs []string) *PayloadBuilder {
	b.payload.AllowedMentions = &AllowedMentions{Parse: []string{}, Roles: roleIDs}
	return b
}

func (b *PayloadBuilder) Build() MessagePayload {
	return b.payload
}
