package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/formset"
)

var ErrMissingEndpoint = errors.New("search: missing endpoint")

// maxBodySize caps how much of a response body is decoded.
const maxBodySize = 4 << 20

// StatusError reports a non-2xx response from the search endpoint.
type StatusError struct {
	Code int
	URL  string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("search: %s returned %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

func (e StatusError) StatusCode() int { return e.Code }

// Client queries a remote search endpoint.
type Client struct {
	endpoint *url.URL
	http     *http.Client
	opts     Options
	cache    *expirable.LRU[string, []formset.Candidate]
	logger   *zap.Logger
}

var _ formset.SearchProvider = (*Client)(nil)

// New builds a client for endpoint. The endpoint may already carry query
// parameters; they are preserved.
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("search: parse endpoint %q: %w", endpoint, err)
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	client := &Client{
		endpoint: parsed,
		opts:     options,
		logger:   options.Logger,
	}
	if client.logger == nil {
		client.logger = zap.NewNop()
	}

	base := http.DefaultTransport
	httpClient := options.HTTPClient
	if httpClient != nil && httpClient.Transport != nil {
		base = httpClient.Transport
	}
	wrapped := &http.Client{}
	if httpClient != nil {
		*wrapped = *httpClient
	}
	wrapped.Transport = &headerTransport{base: base, userAgent: options.UserAgent, header: options.Header}
	client.http = wrapped

	if options.CacheSize > 0 {
		client.cache = expirable.NewLRU[string, []formset.Candidate](options.CacheSize, nil, options.CacheTTL)
	}
	return client, nil
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() string { return c.endpoint.String() }

// RequestURL builds the lookup URL for req.
func (c *Client) RequestURL(req formset.SearchRequest) string {
	u := *c.endpoint
	params := u.Query()

	field := req.Field
	if field == "" {
		field = formset.DefaultSearchField
	}
	params.Set(field, req.Term)
	if req.Exclude {
		name := req.ExcludeParam
		if name == "" {
			name = formset.DefaultExcludeParam
		}
		params.Set(name, "true")
	}
	u.RawQuery = params.Encode()
	return u.String()
}

// Search performs the lookup. Results are cached per URL when caching is
// enabled; failures are never cached.
func (c *Client) Search(ctx context.Context, req formset.SearchRequest) ([]formset.Candidate, error) {
	target := c.RequestURL(req)
	if c.cache != nil {
		if cached, ok := c.cache.Get(target); ok {
			c.logger.Debug("search cache hit", zap.String("url", target))
			return append([]formset.Candidate(nil), cached...), nil
		}
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("search: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search: request %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, StatusError{Code: resp.StatusCode, URL: target}
	}

	var results []formset.Candidate
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&results); err != nil {
		return nil, fmt.Errorf("search: decode response from %s: %w", target, err)
	}
	results = dropKeyless(results)

	c.logger.Debug("search completed", zap.String("url", target), zap.Int("results", len(results)))
	if c.cache != nil {
		c.cache.Add(target, append([]formset.Candidate(nil), results...))
	}
	return results, nil
}

// Purge empties the response cache.
func (c *Client) Purge() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

func dropKeyless(in []formset.Candidate) []formset.Candidate {
	out := make([]formset.Candidate, 0, len(in))
	for _, candidate := range in {
		if candidate.Key == "" {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// headerTransport injects the User-Agent and static headers.
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
	header    http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, values := range t.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
