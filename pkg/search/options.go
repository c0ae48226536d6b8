package search

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "go-formset"
)

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	// Timeout bounds each request on top of the caller's context. Zero
	// disables it.
	Timeout   time.Duration
	UserAgent string
	Header    http.Header

	// CacheSize enables response caching when positive; CacheTTL bounds
	// the age of cached entries (zero keeps them until evicted).
	CacheSize int
	CacheTTL  time.Duration

	Logger *zap.Logger
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(o *Options) {
		o.UserAgent = userAgent
	}
}

// WithHeader adds a static request header.
func WithHeader(key, value string) Option {
	return func(o *Options) {
		if o.Header == nil {
			o.Header = http.Header{}
		}
		o.Header.Add(key, value)
	}
}

// WithCache enables the response cache.
func WithCache(size int, ttl time.Duration) Option {
	return func(o *Options) {
		o.CacheSize = size
		o.CacheTTL = ttl
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
