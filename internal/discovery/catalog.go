package discovery

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aleister1102/changewatch/internal/common"
	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/rs/zerolog"
)

// Catalog supplies the consumers known to the pipeline. It reads the manifest and the
// usage files it lists, and nothing else.
type Catalog struct {
	manifestPath     string
	maxSnapshotBytes int
	fileManager      *common.FileManager
	logger           zerolog.Logger
}

// NewCatalog creates a Catalog from the discovery configuration.
func NewCatalog(cfg config.DiscoveryConfig, logger zerolog.Logger) *Catalog {
	maxBytes := cfg.MaxSnapshotBytes
	if maxBytes <= 0 {
		maxBytes = config.DefaultDiscoveryMaxSnapshotBytes
	}
	return &Catalog{
		manifestPath:     cfg.ManifestPath,
		maxSnapshotBytes: maxBytes,
		fileManager:      common.NewFileManager(logger),
		logger:           logger.With().Str("component", "Catalog").Logger(),
	}
}

// Consumers returns the manifest's consumers in file order, each with its usage
// snapshot assembled. Unreadable usage files are skipped with a warning.
func (c *Catalog) Consumers(ctx context.Context) ([]models.Consumer, error) {
	manifest, err := LoadManifest(c.manifestPath, c.logger)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(c.manifestPath)
	consumers := make([]models.Consumer, 0, len(manifest.Consumers))
	for _, consumer := range manifest.Consumers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		consumer.UsageSnapshot = c.snapshot(baseDir, consumer)
		consumers = append(consumers, consumer)
	}

	c.logger.Info().Str("manifest", c.manifestPath).Int("consumers", len(consumers)).Msg("Consumers discovered")
	return consumers, nil
}

// snapshot concatenates the consumer's usage files, each under a header line, until
// the byte budget is spent.
func (c *Catalog) snapshot(baseDir string, consumer models.Consumer) string {
	var b strings.Builder
	remaining := c.maxSnapshotBytes

	for _, rel := range consumer.UsageFiles {
		if remaining <= 0 {
			c.logger.Debug().Str("consumer", consumer.Name).Msg("Usage snapshot budget exhausted")
			break
		}
		path, err := resolveUsagePath(baseDir, rel)
		if err != nil {
			c.logger.Warn().Err(err).Str("consumer", consumer.Name).Msg("Skipping usage file")
			continue
		}

		header := fmt.Sprintf("--- %s ---\n", filepath.ToSlash(rel))
		if len(header) >= remaining {
			break
		}
		data, err := c.fileManager.ReadPrefix(path, int64(remaining-len(header)))
		if err != nil {
			c.logger.Warn().Err(err).Str("consumer", consumer.Name).Str("file", rel).Msg("Skipping usage file")
			continue
		}

		b.WriteString(header)
		b.Write(data)
		remaining -= len(header) + len(data)
		if remaining > 0 {
			b.WriteByte('\n')
			remaining--
		}
	}
	return b.String()
}

// resolveUsagePath joins rel onto baseDir and refuses paths that leave it.
func resolveUsagePath(baseDir, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", common.NewValidationError("usage_files", rel, "must be relative to the manifest")
	}
	joined := filepath.Join(baseDir, rel)
	back, err := filepath.Rel(baseDir, joined)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", common.NewValidationError("usage_files", rel, "escapes the manifest directory")
	}
	return joined, nil
}
