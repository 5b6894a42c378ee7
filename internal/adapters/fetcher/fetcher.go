// Package fetcher downloads profile pages.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/okian/hiscores/pkg/logger"
	"github.com/okian/hiscores/pkg/metrics"
)

const (
	defaultBaseURL   = "https://scholar.google.com/citations"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36"
	userQueryParam   = "user"
)

// Fetcher returns the raw page for a profile key.
type Fetcher interface {
	Fetch(ctx context.Context, key string) (string, error)
}

// ProfileFetcher fetches <baseURL>?user=<key> with a fixed header set.
type ProfileFetcher struct {
	client    *resty.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
	logger    logger.Logger
}

// Option applies a configuration option to the ProfileFetcher.
type Option func(*ProfileFetcher)

// WithBaseURL overrides the profile endpoint.
func WithBaseURL(u string) Option {
	return func(f *ProfileFetcher) {
		if u != "" {
			f.baseURL = u
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *ProfileFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeout bounds each request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(f *ProfileFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLogger sets a custom logger for the fetcher.
func WithLogger(l logger.Logger) Option {
	return func(f *ProfileFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithHTTPClient swaps the underlying transport client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *ProfileFetcher) {
		if c != nil {
			f.client = resty.NewWithClient(c)
		}
	}
}

// New creates a ProfileFetcher.
func New(opts ...Option) *ProfileFetcher {
	f := &ProfileFetcher{
		client:    resty.New(),
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logger.Get().Named("fetcher")
	}

	f.client.SetHeader("User-Agent", f.userAgent)
	if f.timeout > 0 {
		f.client.SetTimeout(f.timeout)
	}
	return f
}

// Fetch issues one GET and returns the body on HTTP 200.
// Any other status yields ErrUnexpectedStatus and no body.
func (f *ProfileFetcher) Fetch(ctx context.Context, key string) (string, error) {
	start := time.Now()
	res, err := f.client.R().
		SetContext(ctx).
		SetQueryParam(userQueryParam, key).
		Get(f.baseURL)
	metrics.RecordFetchLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRequest, key, err)
	}

	if res.StatusCode() != http.StatusOK {
		f.logger.Debug(ctx, "profile page not fetched",
			logger.String("key", key),
			logger.Int("status", res.StatusCode()),
		)
		return "", fmt.Errorf("%w: %s: %d", ErrUnexpectedStatus, key, res.StatusCode())
	}
	return res.String(), nil
}
