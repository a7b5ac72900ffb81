package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/housing-dashboard/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int
	// RateLimit is the per-host request rate. Zero means 10 req/s.
	RateLimit rate.Limit
	// Breaker guards each host against repeated transient failures.
	Breaker resilience.BreakerConfig
}

// HTTPFetcher downloads sources over HTTP with per-host rate limiting and
// retry of transient failures.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	breakers *resilience.HostBreakers

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher with defaults applied.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "housing-dashboard/1.0"
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = 10
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		breakers: resilience.NewHostBreakers(opts.Breaker),
		limiters: make(map[string]*rate.Limiter),
	}
}

func hostOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.Host
	}
	return ""
}

func (f *HTTPFetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(f.opts.RateLimit, int(f.opts.RateLimit)+1)
		f.limiters[host] = lim
	}
	return lim
}

// Download fetches rawURL and returns the response body. 408, 429 and 5xx
// responses are retried; other non-200 statuses fail immediately.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = f.opts.MaxAttempts
	retry.OnRetry = resilience.RetryLogger(Redact(rawURL))

	host := hostOf(rawURL)
	breaker := f.breakers.For(host)

	var body io.ReadCloser
	err := resilience.Do(ctx, retry, func(ctx context.Context) error {
		return breaker.Execute(ctx, func(ctx context.Context) error {
			var err error
			body, err = f.get(ctx, host, rawURL)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, host, rawURL string) (io.ReadCloser, error) {
	if err := f.limiterFor(host).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetcher: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: get %s", rawURL)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		statusErr := eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}
	return resp.Body, nil
}
