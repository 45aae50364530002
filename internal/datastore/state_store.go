package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"

	"github.com/aleister1102/changewatch/internal/common"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/rs/zerolog"
)

const maxStateFileSize = 64 * 1024 * 1024

// StateStore persists CheckState as a single JSON document.
type StateStore struct {
	path        string
	fileManager *common.FileManager
	logger      zerolog.Logger
}

// NewStateStore creates a store backed by the file at path.
func NewStateStore(path string, logger zerolog.Logger) *StateStore {
	logger = logger.With().Str("component", "StateStore").Logger()
	return &StateStore{
		path:        path,
		fileManager: common.NewFileManager(logger),
		logger:      logger,
	}
}

// Load reads the persisted state. A missing, unreadable or corrupt file yields an
// empty state so the cycle runs as a first-run baseline.
func (s *StateStore) Load(ctx context.Context) *models.CheckState {
	if err := ctx.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("Context done before loading state, starting empty")
		return models.NewCheckState()
	}

	data, err := s.fileManager.ReadFile(s.path, maxStateFileSize)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info().Str("path", s.path).Msg("No state file found, starting from empty baseline")
		} else {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("State file unreadable, starting from empty baseline")
		}
		return models.NewCheckState()
	}

	var snap models.StateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("State file corrupt, starting from empty baseline")
		return models.NewCheckState()
	}
	if snap.Version > models.StateVersion {
		s.logger.Warn().Int("version", snap.Version).Int("supported", models.StateVersion).Msg("State file written by a newer version, starting from empty baseline")
		return models.NewCheckState()
	}

	state := models.CheckStateFromSnapshot(snap)
	s.logger.Debug().
		Str("path", s.path).
		Int("resources", state.ResourceCount()).
		Int("cached_profiles", len(snap.DependencyCache)).
		Msg("State loaded")
	return state
}

// Save atomically replaces the state file. The previous file survives any failure.
func (s *StateStore) Save(ctx context.Context, state *models.CheckState) error {
	if err := ctx.Err(); err != nil {
		return common.WrapError(err, "state not saved")
	}

	data, err := json.MarshalIndent(state.Snapshot(), "", "  ")
	if err != nil {
		return common.WrapError(err, "failed to marshal state")
	}

	if err := s.fileManager.WriteFileAtomic(s.path, data, 0644); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("Failed to save state")
		return common.WrapError(err, "failed to save state")
	}

	s.logger.Debug().Str("path", s.path).Int("bytes", len(data)).Msg("State saved")
	return nil
}
