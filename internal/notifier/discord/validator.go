package discord

import (
	"fmt"
	"unicode/utf8"

	"github.com/aleister1102/changewatch/internal/common"
)

// Discord webhook limits.
const (
	MaxContentLength     = 2000
	MaxTitleLength       = 256
	MaxDescriptionLength = 4096
	MaxFields            = 25
	MaxFieldNameLength   = 256
	MaxFieldValueLength  = 1024
	MaxFooterLength      = 2048
	MaxEmbeds            = 10
	MaxEmbedTotalLength  = 6000
)

// Truncate shortens s to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 1 {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:max-1]) + "…"
}

// ValidateEmbed checks an embed against Discord's limits.
func ValidateEmbed(embed Embed) error {
	if utf8.RuneCountInString(embed.Title) > MaxTitleLength {
		return common.NewValidationError("title", embed.Title, fmt.Sprintf("title cannot exceed %d characters", MaxTitleLength))
	}
	if utf8.RuneCountInString(embed.Description) > MaxDescriptionLength {
		return common.NewValidationError("description", len(embed.Description), fmt.Sprintf("description cannot exceed %d characters", MaxDescriptionLength))
	}
	if len(embed.Fields) > MaxFields {
		return common.NewValidationError("fields", len(embed.Fields), fmt.Sprintf("cannot have more than %d fields", MaxFields))
	}

	total := utf8.RuneCountInString(embed.Title) + utf8.RuneCountInString(embed.Description)
	for i, field := range embed.Fields {
		if field.Name == "" {
			return common.NewValidationError("field_name", field.Name, fmt.Sprintf("field %d name cannot be empty", i))
		}
		if field.Value == "" {
			return common.NewValidationError("field_value", field.Value, fmt.Sprintf("field %d value cannot be empty", i))
		}
		if utf8.RuneCountInString(field.Name) > MaxFieldNameLength {
			return common.NewValidationError("field_name", field.Name, fmt.Sprintf("field %d name cannot exceed %d characters", i, MaxFieldNameLength))
		}
		if utf8.RuneCountInString(field.Value) > MaxFieldValueLength {
			return common.NewValidationError("field_value", len(field.Value), fmt.Sprintf("field %d value cannot exceed %d characters", i, MaxFieldValueLength))
		}
		total += utf8.RuneCountInString(field.Name) + utf8.RuneCountInString(field.Value)
	}

	if embed.Footer != nil {
		if utf8.RuneCountInString(embed.Footer.Text) > MaxFooterLength {
			return common.NewValidationError("footer_text", embed.Footer.Text, fmt.Sprintf("footer text cannot exceed %d characters", MaxFooterLength))
		}
		total += utf8.RuneCountInString(embed.Footer.Text)
	}
	if total > MaxEmbedTotalLength {
		return common.NewValidationError("embed", total, fmt.Sprintf("embed text cannot exceed %d characters in total", MaxEmbedTotalLength))
	}
	return nil
}

// ValidatePayload checks the message content and every embed.
func ValidatePayload(payload MessagePayload) error {
	if payload.Content == "" && len(payload.Embeds) == 0 {
		return common.NewValidationError("payload", nil, "message must have content or at least one embed")
	}
	if utf8.RuneCountInString(payload.Content) > MaxContentLength {
		return common.NewValidationError("content", len(payload.Content), fmt.Sprintf("content cannot exceed %d characters", MaxContentLength))
	}
	if len(payload.Embeds) > MaxEmbeds {
		return common.NewValidationError("embeds", len(payload.Embeds), fmt.Sprintf("cannot have more than %d embeds", MaxEmbeds))
	}
	for _, embed := range payload.Embeds {
		if err := ValidateEmbed(embed); err != nil {
			return err
		}
	}
	return nil
}
