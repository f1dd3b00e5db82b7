// Package fetch retrieves the shop catalog page. It owns the request
// timeout, the retry policy, and the fetch error taxonomy; the parsing
// core only ever sees markup from a successful fetch.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/oxbi/heathfully/config"
)

// Fetcher performs a synchronous GET of the configured shop URL
// through a colly collector. Retries with capped exponential backoff
// happen inline; the caller bounds the whole operation with ctx.
type Fetcher struct {
	cfg  *config.Config
	base *colly.Collector

	mu        sync.Mutex
	transport http.RoundTripper
}

// New builds a fetcher restricted to the shop URL's host.
func New(cfg *config.Config) (*Fetcher, error) {
	parsed, err := url.Parse(cfg.ShopURL)
	if err != nil {
		return nil, fmt.Errorf("parse shop url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("shop url must include a host")
	}

	base := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	base.SetRequestTimeout(cfg.Timeout)
	base.IgnoreRobotsTxt = true

	return &Fetcher{
		cfg:  cfg,
		base: base,
		transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        8,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}, nil
}

// SetTransport swaps the HTTP transport. Used by tests.
func (f *Fetcher) SetTransport(rt http.RoundTripper) {
	f.mu.Lock()
	f.transport = rt
	f.mu.Unlock()
}

// Page fetches the catalog page and returns its raw markup. Transport
// failures and retryable statuses are attempted up to MaxRetries extra
// times; the last classified error is returned when all attempts fail.
func (f *Fetcher) Page(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(f.backoff(attempt)):
			}
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		body, err := f.visit()
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return "", lastErr
}

// visit runs one request on a fresh clone so concurrent callers never
// share response state.
func (f *Fetcher) visit() (string, error) {
	c := f.base.Clone()
	f.mu.Lock()
	c.WithTransport(f.transport)
	f.mu.Unlock()

	var body []byte
	statusCode := 0
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			statusCode = r.StatusCode
		}
	})

	if err := c.Visit(f.cfg.ShopURL); err != nil {
		return "", classify(err, statusCode)
	}
	return string(body), nil
}

func (f *Fetcher) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := f.cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	// Doubling step by step instead of shifting keeps a large attempt
	// count from overflowing into a negative delay.
	max := f.cfg.RetryBackoffMax
	delay := base
	for i := 1; i < attempt; i++ {
		next := delay * 2
		if next <= delay {
			if max > 0 {
				return max
			}
			return delay
		}
		delay = next
		if max > 0 && delay >= max {
			return max
		}
	}
	return delay
}

func classify(err error, statusCode int) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		default:
			return ErrHTTPStatus{Status: statusCode, Err: wrapped}
		}
	}
	return err
}

// retryable keeps retries for transient conditions only; 403/404 will
// not improve on a second attempt.
func retryable(err error) bool {
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return true
	}
	var conn ErrConnection
	if errors.As(err, &conn) {
		return true
	}
	var rateLimited ErrRateLimited
	if errors.As(err, &rateLimited) {
		return true
	}
	var status ErrHTTPStatus
	if errors.As(err, &status) {
		return status.Status >= http.StatusInternalServerError
	}
	return false
}
