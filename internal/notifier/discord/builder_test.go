package discord

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedBuilder_Build(t *testing.T) {
	embed := NewEmbedBuilder().
		WithTitle("Test").
		WithDescription("Description").
		WithTimestamp(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)).
		WithColor(0x00FF00).
		AddField("Empty", "", false).
		AddField("Long", strings.Repeat("x", 2000), false).
		Build()

	assert.Equal(t, "Test", embed.Title)
	assert.Equal(t, "2024-05-01T12:00:00Z", embed.Timestamp)
	require.Len(t, embed.Fields, 1, "empty field values are skipped")
	assert.Equal(t, MaxFieldValueLength, len([]rune(embed.Fields[0].Value)))
	assert.NoError(t, ValidateEmbed(embed))
}

func TestValidatePayload(t *testing.T) {
	assert.Error(t, ValidatePayload(MessagePayload{}))
	assert.Error(t, ValidatePayload(MessagePayload{Content: strings.Repeat("a", MaxContentLength+1)}))
	assert.NoError(t, ValidatePayload(MessagePayload{Content: "hi"}))

	tooLong := Embed{Title: strings.Repeat("t", MaxTitleLength+1)}
	assert.Error(t, ValidatePayload(MessagePayload{Embeds: []Embed{tooLong}}))

	total := Embed{Description: strings.Repeat("d", 4000)}
	for i := 0; i < 3; i++ {
		total.Fields = append(total.Fields, EmbedField{Name: "f", Value: strings.Repeat("v", 1000)})
	}
	assert.Error(t, ValidateEmbed(total))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab…", Truncate("abcd", 3))
	assert.Equal(t, "日本…", Truncate("日本語です", 3))
}
