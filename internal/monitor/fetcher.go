package monitor

import (
	"context"

	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/httpclient"
	"github.com/rs/zerolog"
)

// Fetcher retrieves a monitored document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*httpclient.FetchResult, error)
}

// NewFetcher builds the HTTP client used for source fetches: fixed timeout and
// identifying user agent, optional status-code retries.
func NewFetcher(cfg config.MonitorConfig, logger zerolog.Logger) (*httpclient.HTTPClient, error) {
	builder := httpclient.NewHTTPClientBuilder(logger).
		WithTimeout(cfg.HTTPTimeout()).
		WithUserAgent(cfg.UserAgent).
		WithMaxContentSize(cfg.MaxContentSize).
		WithInsecureSkipVerify(cfg.InsecureSkipVerify).
		WithFollowRedirects(true).
		WithMaxRedirects(cfg.RedirectLimit()).
		// Idle pool sized to the fetch fan-out.
		WithConnectionPooling(2*cfg.Concurrency(), cfg.Concurrency(), 0)

	if cfg.Retries > 0 {
		builder = builder.WithRetries(httpclient.DefaultRetryHandlerConfig(cfg.Retries))
	}
	return builder.Build()
}
