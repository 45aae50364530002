package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/changewatch/internal/common"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const maxConfigFileSize = 10 * 1024 * 1024

type GlobalConfig struct {
	AnalysisConfig     AnalysisConfig     `json:"analysis_config,omitempty" yaml:"analysis_config,omitempty"`
	DiscoveryConfig    DiscoveryConfig    `json:"discovery_config,omitempty" yaml:"discovery_config,omitempty"`
	LogConfig          LogConfig          `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	MonitorConfig      MonitorConfig      `json:"monitor_config,omitempty" yaml:"monitor_config,omitempty"`
	NotificationConfig NotificationConfig `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	SchedulerConfig    SchedulerConfig    `json:"scheduler_config,omitempty" yaml:"scheduler_config,omitempty"`
	StorageConfig      StorageConfig      `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		AnalysisConfig:     NewDefaultAnalysisConfig(),
		DiscoveryConfig:    NewDefaultDiscoveryConfig(),
		LogConfig:          NewDefaultLogConfig(),
		MonitorConfig:      NewDefaultMonitorConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
		SchedulerConfig:    NewDefaultSchedulerConfig(),
		StorageConfig:      NewDefaultStorageConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is used if the file extension is .yaml or .yml. When no file is found the defaults are returned.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" {
		if _, err := os.Stat(providedPath); err != nil {
			return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
		}
	}

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		logger.Debug().Msg("No config file found, using defaults")
		return cfg, nil
	}

	fileManager := common.NewFileManager(logger)
	data, err := fileManager.ReadFile(filePath, maxConfigFileSize)
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	logger.Debug().Str("path", filePath).Msg("Configuration loaded")
	return cfg, nil
}

// ApplyEnvOverrides copies secrets from the environment into the config.
// It is called once at process start; nothing reads the environment afterwards.
func (c *GlobalConfig) ApplyEnvOverrides(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if key := getenv(EnvAPIKey); key != "" {
		c.AnalysisConfig.APIKey = key
	} else if key := getenv(EnvOpenAIAPIKey); key != "" && c.AnalysisConfig.APIKey == "" {
		c.AnalysisConfig.APIKey = key
	}
	if webhook := getenv(EnvDiscordWebhook); webhook != "" {
		c.NotificationConfig.DiscordWebhookURL = webhook
	}
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}
