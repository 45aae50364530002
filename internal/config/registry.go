package config

import (
	"sort"

	"github.com/aleister1102/changewatch/internal/common"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Source is one monitored document of a provider.
type Source struct {
	URL         string `json:"url" yaml:"url" validate:"required,httpurl"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Provider groups the sources published by one organization.
type Provider struct {
	Name    string   `json:"name" yaml:"name" validate:"required"`
	Sources []Source `json:"sources" yaml:"sources" validate:"required,min=1,dive"`
}

// Registry maps provider key to provider. It is read once per cycle and never mutated.
type Registry struct {
	Providers map[string]Provider `json:"providers" yaml:"providers" validate:"required,min=1,dive"`
}

// Keys returns provider keys in sorted order, which is the iteration order of a cycle.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.Providers))
	for k := range r.Providers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SourceCount returns the number of configured sources across all providers.
func (r *Registry) SourceCount() int {
	n := 0
	for _, p := range r.Providers {
		n += len(p.Sources)
	}
	return n
}

// Validate checks that every provider has a name and at least one absolute http(s) source.
func (r *Registry) Validate() error {
	if err := newValidator().Struct(r); err != nil {
		return formatValidationError("registry", err)
	}
	return nil
}

// LoadRegistry reads and validates the provider registry. A missing or invalid
// registry is the only cycle-fatal configuration error.
func LoadRegistry(path string, logger zerolog.Logger) (*Registry, error) {
	if path == "" {
		return nil, common.NewValidationError("registry_path", path, "registry path is empty")
	}

	fileManager := common.NewFileManager(logger)
	if !fileManager.FileExists(path) {
		return nil, common.WrapErrorf(common.ErrNotFound, "provider registry '%s'", path)
	}

	data, err := fileManager.ReadFile(path, maxConfigFileSize)
	if err != nil {
		return nil, common.WrapError(err, "failed to read provider registry")
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, common.NewError("failed to unmarshal registry YAML from '%s': %w", path, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().Str("path", path).Int("providers", len(reg.Providers)).Int("sources", reg.SourceCount()).Msg("Provider registry loaded")
	return &reg, nil
}
