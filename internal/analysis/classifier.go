package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aleister1102/changewatch/internal/models"
	"github.com/rs/zerolog"
)

type classifyResult struct {
	Changes []struct {
		Title     string `json:"title"`
		Summary   string `json:"summary"`
		Type      string `json:"type"`
		Relevance string `json:"relevance"`
		Date      string `json:"date"`
	} `json:"changes"`
	NoChangesDetected bool `json:"no_changes_detected"`
}

func validateClassifyResult(r *classifyResult) error {
	for i, c := range r.Changes {
		if strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("change %d has no title", i)
		}
	}
	return nil
}

// Classifier is Stage 1: it turns the changed pages of one provider into change entries.
type Classifier struct {
	client Client
	logger zerolog.Logger
}

// NewClassifier creates a Classifier.
func NewClassifier(client Client, logger zerolog.Logger) *Classifier {
	return &Classifier{
		client: client,
		logger: logger.With().Str("component", "Classifier").Logger(),
	}
}

// Classify sends each page of the provider to the analysis service in order and merges
// the entries by title. If any page fails, the provider gets an empty set flagged as failed.
func (c *Classifier) Classify(ctx context.Context, providerKey, providerName string, records []models.ChangeRecord) models.ProviderChangeSet {
	set := models.EmptyChangeSet(providerKey, providerName, false)

	for _, record := range records {
		if !record.HasContent() {
			continue
		}
		entries, err := c.classifyPage(ctx, providerName, record)
		if err != nil {
			stageErr := &StageError{Stage: StageClassify, Subject: providerKey, Err: err}
			c.logger.Error().Err(stageErr).
				Str("stage", string(StageClassify)).
				Str("provider", providerKey).
				Str("url", record.URL).
				Str("failure", failureKind(err)).
				Msg("Change classification failed")
			c.logger.Warn().Str("provider", providerKey).Msg("Using empty change set for provider")
			return models.EmptyChangeSet(providerKey, providerName, true)
		}
		set.MergeEntries(entries)
	}

	c.logger.Info().Str("provider", providerKey).Int("pages", len(records)).Int("changes", len(set.Changes)).Msg("Provider classified")
	return set
}

func (c *Classifier) classifyPage(ctx context.Context, providerName string, record models.ChangeRecord) ([]models.ChangeEntry, error) {
	result, err := Invoke(ctx, c.client, classifyInstructions, classifyPayload(providerName, record), validateClassifyResult)
	if err != nil {
		return nil, err
	}

	entries := make([]models.ChangeEntry, 0, len(result.Changes))
	for _, ch := range result.Changes {
		entries = append(entries, models.ChangeEntry{
			Title:     strings.TrimSpace(ch.Title),
			Summary:   strings.TrimSpace(ch.Summary),
			Type:      models.ParseChangeType(ch.Type),
			Relevance: models.ParseLevel(ch.Relevance),
			SourceURL: record.URL,
			Date:      strings.TrimSpace(ch.Date),
		})
	}
	return entries, nil
}

func classifyPayload(providerName string, record models.ChangeRecord) string {
	header := map[string]string{
		"provider":    providerName,
		"url":         record.URL,
		"description": record.Description,
		"change_kind": string(record.Kind),
	}
	meta, _ := json.Marshal(header)
	return fmt.Sprintf("Page metadata: %s\n\nPage content:\n%s", meta, record.Content)
}
