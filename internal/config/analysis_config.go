package config

import "time"

// AnalysisConfig configures the OpenAI-compatible analysis service used by all three stages.
type AnalysisConfig struct {
	BaseURL               string  `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	APIKey                string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model                 string  `json:"model,omitempty" yaml:"model,omitempty" validate:"required"`
	MaxTokens             int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" validate:"omitempty,min=1"`
	Temperature           float32 `json:"temperature" yaml:"temperature" validate:"min=0,max=2"`
	TimeoutSeconds        int     `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1"`
	RequestsPerMinute     int     `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty" validate:"omitempty,min=1"`
	CacheFreshnessDays    int     `json:"cache_freshness_days,omitempty" yaml:"cache_freshness_days,omitempty" validate:"omitempty,min=1"`
	RetryFallbackProfiles bool    `json:"retry_fallback_profiles" yaml:"retry_fallback_profiles"`
}

func NewDefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		BaseURL:            DefaultAnalysisBaseURL,
		Model:              DefaultAnalysisModel,
		MaxTokens:          DefaultAnalysisMaxTokens,
		Temperature:        DefaultAnalysisTemperature,
		TimeoutSeconds:     DefaultAnalysisTimeoutSeconds,
		RequestsPerMinute:  DefaultAnalysisRequestsPerMinute,
		CacheFreshnessDays: DefaultAnalysisCacheFreshDays,
	}
}

// FreshnessWindow is the maximum age of a cached dependency profile.
func (c AnalysisConfig) FreshnessWindow() time.Duration {
	if c.CacheFreshnessDays <= 0 {
		return DefaultAnalysisCacheFreshDays * Day
	}
	return time.Duration(c.CacheFreshnessDays) * Day
}

// Timeout bounds a single analysis request.
func (c AnalysisConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultAnalysisTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
