package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/aleister1102/changewatch/internal/common"
	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/httpclient"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/rs/zerolog"
)

// SourceTarget identifies one configured source of a provider.
type SourceTarget struct {
	ProviderKey  string
	ProviderName string
	Source       config.Source
}

// URLChecker checks a single source against the stored state.
type URLChecker struct {
	logger    zerolog.Logger
	fetcher   Fetcher
	processor *ContentProcessor
	now       func() time.Time
}

// NewURLChecker creates a new URLChecker
func NewURLChecker(fetcher Fetcher, processor *ContentProcessor, now func() time.Time, logger zerolog.Logger) *URLChecker {
	if now == nil {
		now = time.Now
	}
	return &URLChecker{
		logger:    logger.With().Str("component", "URLChecker").Logger(),
		fetcher:   fetcher,
		processor: processor,
		now:       now,
	}
}

// CheckSource fetches target, replaces its Resource in state and returns the change
// record to emit, or nil when nothing is reported. A fetch interrupted by ctx
// cancellation leaves state untouched.
func (uc *URLChecker) CheckSource(ctx context.Context, target SourceTarget, state *models.CheckState) *models.ChangeRecord {
	url := target.Source.URL
	log := uc.logger.With().Str("provider", target.ProviderKey).Str("url", url).Logger()

	prev, seen := state.Resource(target.ProviderKey, url)
	result, err := uc.fetcher.Fetch(ctx, url)
	checkedAt := uc.now().UTC()

	if err != nil && ctx.Err() != nil {
		log.Warn().Err(err).Msg("Check interrupted, state left unchanged")
		return nil
	}

	if err != nil {
		status := failureStatus(result, err)
		log.Warn().Err(err).Int("status_code", status).Msg("Source unreachable")

		state.PutResource(target.ProviderKey, url, models.Resource{
			Description: target.Source.Description,
			Fingerprint: prev.Fingerprint,
			StatusCode:  status,
			LastChecked: checkedAt,
		})

		// Only a transition from reachable is reported.
		if !seen || !prev.IsReachable() {
			return nil
		}
		record := uc.newRecord(target, models.ChangeKindUnavailable, prev)
		record.CurrentStatus = status
		return &record
	}

	processed := uc.processor.Process(url, result.Content)
	state.PutResource(target.ProviderKey, url, models.Resource{
		Description: target.Source.Description,
		Fingerprint: processed.Fingerprint,
		StatusCode:  result.HTTPStatusCode,
		LastChecked: checkedAt,
	})

	var kind models.ChangeKind
	switch {
	case !seen || prev.Fingerprint == "":
		kind = models.ChangeKindNew
	case prev.Fingerprint != processed.Fingerprint:
		kind = models.ChangeKindModified
	default:
		log.Debug().Str("fingerprint", processed.Fingerprint).Msg("Source unchanged")
		return nil
	}

	record := uc.newRecord(target, kind, prev)
	record.Content = processed.Text
	record.CurrentHash = processed.Fingerprint
	record.CurrentStatus = result.HTTPStatusCode
	log.Info().Str("kind", string(kind)).Str("previous_hash", prev.Fingerprint).Str("current_hash", processed.Fingerprint).Msg("Source changed")
	return &record
}

func (uc *URLChecker) newRecord(target SourceTarget, kind models.ChangeKind, prev models.Resource) models.ChangeRecord {
	return models.ChangeRecord{
		ProviderKey:    target.ProviderKey,
		ProviderName:   target.ProviderName,
		URL:            target.Source.URL,
		Description:    target.Source.Description,
		Kind:           kind,
		PreviousHash:   prev.Fingerprint,
		PreviousStatus: prev.StatusCode,
	}
}

// failureStatus is the HTTP code of an unreachable response, or 0 for transport failures.
func failureStatus(result *httpclient.FetchResult, err error) int {
	var httpErr *common.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	if result != nil && !httpclient.IsReachable(result.HTTPStatusCode) {
		return result.HTTPStatusCode
	}
	return 0
}
