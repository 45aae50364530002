package config

// DiscoveryConfig points at the consumer manifest produced by the discovery step.
type DiscoveryConfig struct {
	ManifestPath     string `json:"manifest_path,omitempty" yaml:"manifest_path,omitempty" validate:"required"`
	MaxSnapshotBytes int    `json:"max_snapshot_bytes,omitempty" yaml:"max_snapshot_bytes,omitempty" validate:"omitempty,min=256"`
}

func NewDefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		ManifestPath:     DefaultDiscoveryManifestPath,
		MaxSnapshotBytes: DefaultDiscoveryMaxSnapshotBytes,
	}
}
