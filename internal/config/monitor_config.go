package config

import (
	"time"
)

// MonitorConfig defines how configured sources are fetched and fingerprinted
type MonitorConfig struct {
	RegistryPath         string `json:"registry_path,omitempty" yaml:"registry_path,omitempty" validate:"required"`
	HTTPTimeoutSeconds   int    `json:"http_timeout_seconds,omitempty" yaml:"http_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	UserAgent            string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	MaxConcurrentFetches int    `json:"max_concurrent_fetches,omitempty" yaml:"max_concurrent_fetches,omitempty" validate:"omitempty,min=1,max=64"`
	MaxContentSize       int    `json:"max_content_size,omitempty" yaml:"max_content_size,omitempty" validate:"omitempty,min=1"` // Max content size in bytes
	FingerprintWidth     int    `json:"fingerprint_width,omitempty" yaml:"fingerprint_width,omitempty" validate:"omitempty,min=8,max=64"`
	MaxAnalysisChars     int    `json:"max_analysis_chars,omitempty" yaml:"max_analysis_chars,omitempty" validate:"omitempty,min=100"`
	Retries              int    `json:"retries,omitempty" yaml:"retries,omitempty" validate:"omitempty,min=0,max=5"`
	MaxRedirects         int    `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"omitempty,min=0,max=20"`
	InsecureSkipVerify   bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		RegistryPath:         DefaultMonitorRegistryPath,
		HTTPTimeoutSeconds:   DefaultMonitorHTTPTimeoutSeconds,
		UserAgent:            DefaultMonitorUserAgent,
		MaxConcurrentFetches: DefaultMonitorMaxConcurrentFetches,
		MaxContentSize:       DefaultMonitorMaxContentSize,
		FingerprintWidth:     DefaultMonitorFingerprintWidth,
		MaxAnalysisChars:     DefaultMonitorMaxAnalysisChars,
		Retries:              DefaultMonitorRetries,
		MaxRedirects:         DefaultMonitorMaxRedirects,
		InsecureSkipVerify:   false,
	}
}

// HTTPTimeout returns the per-fetch timeout.
func (c MonitorConfig) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return DefaultMonitorHTTPTimeoutSeconds * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Concurrency returns the fetch fan-out, falling back to the default when unset.
func (c MonitorConfig) Concurrency() int {
	if c.MaxConcurrentFetches <= 0 {
		return DefaultMonitorMaxConcurrentFetches
	}
	return c.MaxConcurrentFetches
}

// RedirectLimit returns how many redirects a fetch may follow.
func (c MonitorConfig) RedirectLimit() int {
	if c.MaxRedirects <= 0 {
		return DefaultMonitorMaxRedirects
	}
	return c.MaxRedirects
}
