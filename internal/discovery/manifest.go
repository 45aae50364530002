package discovery

import (
	"github.com/aleister1102/changewatch/internal/common"
	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const maxManifestSize int64 = 1 * 1024 * 1024

// Manifest is the list of consumers produced by the discovery scan.
type Manifest struct {
	Consumers []models.Consumer `yaml:"consumers" validate:"required,min=1,unique=Name,dive"`
}

// LoadManifest reads and validates the consumer manifest at path.
func LoadManifest(path string, logger zerolog.Logger) (*Manifest, error) {
	fileManager := common.NewFileManager(logger)
	if !fileManager.FileExists(path) {
		return nil, common.WrapErrorf(common.ErrNotFound, "consumer manifest '%s'", path)
	}

	data, err := fileManager.ReadFile(path, maxManifestSize)
	if err != nil {
		return nil, common.WrapError(err, "failed to read consumer manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, common.NewError("failed to unmarshal manifest YAML from '%s': %w", path, err)
	}
	if err := config.ValidateStruct("consumer manifest", &m); err != nil {
		return nil, err
	}
	return &m, nil
}
