package monitor

import (
	"github.com/aleister1102/changewatch/internal/normalizer"
	"github.com/rs/zerolog"
)

// ProcessedContent is the fingerprint and analysable text of a fetched document.
type ProcessedContent struct {
	Fingerprint string
	Text        string
}

// ContentProcessor fingerprints fetched content and extracts its text.
type ContentProcessor struct {
	logger           zerolog.Logger
	fingerprintWidth int
	maxTextChars     int
}

// NewContentProcessor creates a new ContentProcessor.
func NewContentProcessor(fingerprintWidth, maxTextChars int, logger zerolog.Logger) *ContentProcessor {
	return &ContentProcessor{
		logger:           logger.With().Str("component", "ContentProcessor").Logger(),
		fingerprintWidth: fingerprintWidth,
		maxTextChars:     maxTextChars,
	}
}

// Fingerprint computes only the change indicator of content.
func (p *ContentProcessor) Fingerprint(content []byte) string {
	return normalizer.Fingerprint(content, p.fingerprintWidth)
}

// Text extracts the normalized, truncated text of content for classification.
func (p *ContentProcessor) Text(content []byte) string {
	return normalizer.Truncate(normalizer.Normalize(content), p.maxTextChars)
}

// Process returns both the fingerprint and the text of content.
func (p *ContentProcessor) Process(url string, content []byte) ProcessedContent {
	processed := ProcessedContent{
		Fingerprint: p.Fingerprint(content),
		Text:        p.Text(content),
	}
	p.logger.Debug().Str("url", url).Str("fingerprint", processed.Fingerprint).Int("text_chars", len(processed.Text)).Msg("Content processed")
	return processed
}
