package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/aleister1102/changewatch/internal/common"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// HTTPRequest describes one outgoing request
type HTTPRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    io.Reader
	Context context.Context
}

// HTTPResponse is a fully read response
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// HTTPClient wraps net/http.Client with default headers, size limits and retries
type HTTPClient struct {
	client       *http.Client
	config       HTTPClientConfig
	logger       zerolog.Logger
	retryHandler *RetryHandler
	bufferPool   sync.Pool
}

// NewHTTPClient creates a new HTTP client with the given configuration using net/http
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	logger = logger.With().Str("component", "HTTPClient").Logger()

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		} else {
			logger.Debug().Msg("HTTP/2 support enabled")
		}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	if !config.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if config.MaxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", config.MaxRedirects)
			}
			return nil
		}
	}

	logger.Debug().
		Dur("timeout", config.Timeout).
		Bool("insecure_skip_verify", config.InsecureSkipVerify).
		Bool("follow_redirects", config.FollowRedirects).
		Int("max_redirects", config.MaxRedirects).
		Bool("http2_enabled", config.EnableHTTP2).
		Msg("HTTP client created")

	return &HTTPClient{
		client: client,
		config: config,
		logger: logger,
		bufferPool: sync.Pool{
			New: func() interface{} {
				b := make([]byte, 32*1024)
				return &b
			},
		},
	}, nil
}

// Do performs an HTTP request, with retries if a retry handler is configured.
func (c *HTTPClient) Do(req *HTTPRequest) (*HTTPResponse, error) {
	if c.retryHandler != nil {
		ctx := req.Context
		if ctx == nil {
			ctx = context.Background()
		}
		return c.retryHandler.DoWithRetry(ctx, c.do, req)
	}
	return c.do(req)
}

// do performs a single attempt. Bodies are read up to MaxContentSize bytes.
func (c *HTTPClient) do(req *HTTPRequest) (*HTTPResponse, error) {
	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, req.Body)
	if err != nil {
		return nil, common.NewNetworkError(req.URL, "failed to create HTTP request", err)
	}

	for key, value := range c.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "*/*")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, common.NewNetworkError(req.URL, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if c.config.MaxContentSize > 0 {
		reader = io.LimitReader(resp.Body, int64(c.config.MaxContentSize))
	}

	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)
	buf := bytes.NewBuffer((*bufPtr)[:0])

	if _, err := io.Copy(buf, reader); err != nil {
		return nil, common.NewNetworkError(req.URL, "failed to read response body", err)
	}

	// Copy out so the pooled buffer can be reused.
	bodyBytes := make([]byte, buf.Len())
	copy(bodyBytes, buf.Bytes())

	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string, len(resp.Header)),
		Body:       bodyBytes,
	}
	for key, values := range resp.Header {
		if len(values) > 0 {
			httpResp.Headers[key] = values[0]
		}
	}

	return httpResp, nil
}

// FetchResult is the outcome of fetching a monitored document.
type FetchResult struct {
	Content        []byte
	ContentType    string
	HTTPStatusCode int
}

// IsReachable reports whether a status code counts as a reachable resource.
func IsReachable(statusCode int) bool {
	return statusCode >= 200 && statusCode < 400
}

// Fetch GETs a document. Transport failures return a *common.NetworkError and a nil
// result. Unreachable status codes return the result together with a *common.HTTPError.
func (c *HTTPClient) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	resp, err := c.Do(&HTTPRequest{
		URL:    url,
		Method: http.MethodGet,
		Headers: map[string]string{
			"Accept":        "text/html,application/xhtml+xml,application/xml;q=0.9,text/plain;q=0.8,*/*;q=0.5",
			"Cache-Control": "no-cache",
		},
		Context: ctx,
	})
	if err != nil && resp == nil {
		c.logger.Debug().Err(err).Str("url", url).Msg("Fetch failed")
		return nil, err
	}

	result := &FetchResult{
		ContentType:    resp.Headers["Content-Type"],
		HTTPStatusCode: resp.StatusCode,
	}

	if !IsReachable(resp.StatusCode) {
		c.logger.Warn().Str("url", url).Int("status_code", resp.StatusCode).Msg("Received non-success HTTP status")
		errorBody := resp.Body
		if len(errorBody) > 1024 {
			errorBody = errorBody[:1024]
		}
		return result, common.NewHTTPErrorWithURL(resp.StatusCode, string(errorBody), url)
	}

	result.Content = resp.Body
	c.logger.Debug().
		Str("url", url).
		Int("content_size", len(result.Content)).
		Str("content_type", result.ContentType).
		Msg("Successfully fetched content")

	return result, nil
}
