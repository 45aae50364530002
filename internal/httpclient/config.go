package httpclient

import "time"

// HTTPClientConfig holds the transport and request settings of an HTTPClient
type HTTPClientConfig struct {
	Timeout               time.Duration
	InsecureSkipVerify    bool
	FollowRedirects       bool
	MaxRedirects          int
	UserAgent             string
	CustomHeaders         map[string]string
	MaxContentSize        int // bytes, 0 for no limit
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ExpectContinueTimeout time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	EnableHTTP2           bool
}

// DefaultHTTPClientConfig returns the settings used for fetching monitored sources
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:               30 * time.Second,
		InsecureSkipVerify:    false,
		FollowRedirects:       true,
		MaxRedirects:          10,
		UserAgent:             "changewatch/1.0",
		CustomHeaders:         make(map[string]string),
		MaxContentSize:        0,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   4,
		MaxConnsPerHost:       0,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		EnableHTTP2:           true,
	}
}
