package config

// StorageConfig locates the persisted check state and the cycle history database.
type StorageConfig struct {
	StatePath      string `json:"state_path,omitempty" yaml:"state_path,omitempty" validate:"required"`
	HistoryDBPath  string `json:"history_db_path,omitempty" yaml:"history_db_path,omitempty" validate:"required_if=HistoryEnabled true"`
	HistoryEnabled bool   `json:"history_enabled" yaml:"history_enabled"`
}

func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		StatePath:      DefaultStorageStatePath,
		HistoryDBPath:  DefaultStorageHistoryDBPath,
		HistoryEnabled: DefaultStorageHistoryEnabled,
	}
}
