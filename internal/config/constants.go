package config

import "time"

const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Monitor Defaults
	DefaultMonitorRegistryPath         = "providers.yaml"
	DefaultMonitorHTTPTimeoutSeconds   = 30
	DefaultMonitorUserAgent            = "changewatch/1.0 (+https://github.com/aleister1102/changewatch)"
	DefaultMonitorMaxConcurrentFetches = 4
	DefaultMonitorMaxContentSize       = 5 * 1024 * 1024
	DefaultMonitorFingerprintWidth     = 16
	DefaultMonitorMaxAnalysisChars     = 15000
	DefaultMonitorRetries              = 0
	DefaultMonitorMaxRedirects         = 10

	// Storage Defaults
	DefaultStorageStatePath      = "data/state.json"
	DefaultStorageHistoryDBPath  = "data/history.db"
	DefaultStorageHistoryEnabled = true

	// Analysis Defaults
	DefaultAnalysisBaseURL           = "https://api.openai.com/v1"
	DefaultAnalysisModel             = "gpt-4o-mini"
	DefaultAnalysisMaxTokens         = 2000
	DefaultAnalysisTemperature       = 0.0
	DefaultAnalysisTimeoutSeconds    = 120
	DefaultAnalysisRequestsPerMinute = 30
	DefaultAnalysisCacheFreshDays    = 30

	// Discovery Defaults
	DefaultDiscoveryManifestPath     = "consumers.yaml"
	DefaultDiscoveryMaxSnapshotBytes = 8000

	// Notification Defaults
	DefaultNotificationUsername       = "changewatch"
	DefaultNotificationTimeoutSeconds = 20

	// Scheduler Defaults
	DefaultSchedulerCron = "0 9 * * *"

	// Environment overrides
	EnvConfigPath     = "CHANGEWATCH_CONFIG_PATH"
	EnvAPIKey         = "CHANGEWATCH_API_KEY"
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvDiscordWebhook = "CHANGEWATCH_DISCORD_WEBHOOK"
)

// Day is the unit the dependency cache freshness window is configured in.
const Day = 24 * time.Hour
