package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultGlobalConfig_IsValid(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, 30, cfg.AnalysisConfig.CacheFreshnessDays)
	assert.Equal(t, 30*Day, cfg.AnalysisConfig.FreshnessWindow())
	assert.Equal(t, 16, cfg.MonitorConfig.FingerprintWidth)
	assert.Equal(t, 4, cfg.MonitorConfig.MaxConcurrentFetches)
	assert.Equal(t, 10, cfg.MonitorConfig.MaxRedirects)
	assert.Equal(t, "0 9 * * *", cfg.SchedulerConfig.Cron)
}

func TestMonitorConfig_Fallbacks(t *testing.T) {
	var cfg MonitorConfig
	assert.Equal(t, DefaultMonitorMaxConcurrentFetches, cfg.Concurrency())
	assert.Equal(t, DefaultMonitorMaxRedirects, cfg.RedirectLimit())

	cfg.MaxConcurrentFetches = 8
	cfg.MaxRedirects = 3
	assert.Equal(t, 8, cfg.Concurrency())
	assert.Equal(t, 3, cfg.RedirectLimit())
}

func TestLoadGlobalConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
log_config:
  log_level: debug
monitor_config:
  registry_path: reg.yaml
  max_concurrent_fetches: 8
  max_redirects: 3
analysis_config:
  model: gpt-4o
  cache_freshness_days: 7
`)

	cfg, err := LoadGlobalConfig(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	assert.Equal(t, "reg.yaml", cfg.MonitorConfig.RegistryPath)
	assert.Equal(t, 8, cfg.MonitorConfig.MaxConcurrentFetches)
	assert.Equal(t, 3, cfg.MonitorConfig.MaxRedirects)
	assert.Equal(t, "gpt-4o", cfg.AnalysisConfig.Model)
	assert.Equal(t, 7*Day, cfg.AnalysisConfig.FreshnessWindow())
	// untouched sections keep their defaults
	assert.Equal(t, DefaultStorageStatePath, cfg.StorageConfig.StatePath)
	assert.Equal(t, DefaultMonitorHTTPTimeoutSeconds, cfg.MonitorConfig.HTTPTimeoutSeconds)
}

func TestLoadGlobalConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"storage_config":{"state_path":"s.json","history_enabled":false}}`)

	cfg, err := LoadGlobalConfig(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "s.json", cfg.StorageConfig.StatePath)
	assert.False(t, cfg.StorageConfig.HistoryEnabled)
}

func TestLoadGlobalConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadGlobalConfig(filepath.Join(dir, "missing.yaml"), zerolog.Nop())
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "log_config: [unterminated")
	_, err = LoadGlobalConfig(bad, zerolog.Nop())
	assert.Error(t, err)
}

func TestValidateConfig_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GlobalConfig)
		field  string
	}{
		{"bad log level", func(c *GlobalConfig) { c.LogConfig.LogLevel = "verbose" }, "LogLevel"},
		{"bad log format", func(c *GlobalConfig) { c.LogConfig.LogFormat = "xml" }, "LogFormat"},
		{"bad cron", func(c *GlobalConfig) { c.SchedulerConfig.Cron = "every day" }, "Cron"},
		{"no registry", func(c *GlobalConfig) { c.MonitorConfig.RegistryPath = "" }, "RegistryPath"},
		{"too many fetches", func(c *GlobalConfig) { c.MonitorConfig.MaxConcurrentFetches = 1000 }, "MaxConcurrentFetches"},
		{"too many redirects", func(c *GlobalConfig) { c.MonitorConfig.MaxRedirects = 50 }, "MaxRedirects"},
		{"bad webhook", func(c *GlobalConfig) { c.NotificationConfig.DiscordWebhookURL = "not a url" }, "DiscordWebhookURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultGlobalConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvOpenAIAPIKey:   "sk-openai",
		EnvDiscordWebhook: "https://discord.com/api/webhooks/1/abc",
	}
	cfg := NewDefaultGlobalConfig()
	cfg.ApplyEnvOverrides(func(k string) string { return env[k] })
	assert.Equal(t, "sk-openai", cfg.AnalysisConfig.APIKey)
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc", cfg.NotificationConfig.DiscordWebhookURL)

	env[EnvAPIKey] = "sk-own"
	cfg.ApplyEnvOverrides(func(k string) string { return env[k] })
	assert.Equal(t, "sk-own", cfg.AnalysisConfig.APIKey)
}

func TestGetConfigPath_Priority(t *testing.T) {
	dir := t.TempDir()
	flagPath := writeFile(t, dir, "flag.yaml", "{}")
	envPath := writeFile(t, dir, "env.yaml", "{}")

	t.Setenv(EnvConfigPath, envPath)
	assert.Equal(t, flagPath, GetConfigPath(flagPath))
	assert.Equal(t, envPath, GetConfigPath(""))
	assert.Equal(t, envPath, GetConfigPath(filepath.Join(dir, "nope.yaml")))
}
