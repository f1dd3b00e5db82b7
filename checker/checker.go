// Package checker runs one availability cycle end to end: fetch the
// catalog page, parse and classify it, and render the report message.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/oxbi/heathfully/catalog"
	"github.com/oxbi/heathfully/config"
	"github.com/oxbi/heathfully/fetch"
	"github.com/oxbi/heathfully/report"
)

// PageFetcher is the fetch collaborator the checker depends on.
type PageFetcher interface {
	Page(ctx context.Context) (string, error)
}

// Checker produces availability reports on demand. It holds no state
// across cycles beyond a short-TTL report cache, so concurrent run-now
// triggers from several subscribers coalesce into one fetch instead of
// hammering the shop.
type Checker struct {
	cfg     *config.Config
	fetcher PageFetcher
	cache   *expirable.LRU[string, string]
	Metrics *Metrics

	now func() time.Time
}

// New builds a checker around the given fetcher. A zero CacheTTL
// disables report caching.
func New(cfg *config.Config, fetcher PageFetcher) *Checker {
	var cache *expirable.LRU[string, string]
	if cfg.CacheTTL > 0 {
		cache = expirable.NewLRU[string, string](8, nil, cfg.CacheTTL)
	}
	return &Checker{
		cfg:     cfg,
		fetcher: fetcher,
		cache:   cache,
		Metrics: NewMetrics(),
		now:     time.Now,
	}
}

// BuildReport returns the formatted availability message for the
// configured shop URL. A fetch or markup failure is returned as an
// error; an empty catalog is a valid report, not a failure.
//
// When caching is enabled a hit re-serves the previously rendered
// message verbatim, so its checked-at line can lag real time by up to
// CacheTTL.
func (c *Checker) BuildReport(ctx context.Context) (string, error) {
	if cached, ok := c.cachedReport(); ok {
		c.Metrics.IncCheck("cached")
		return cached, nil
	}

	fetchStart := c.now()
	markup, err := c.fetcher.Page(ctx)
	if err != nil {
		c.Metrics.IncCheck("fetch_error")
		return "", fmt.Errorf("fetch %s: %w", c.cfg.ShopURL, err)
	}
	fetchDuration := c.now().Sub(fetchStart)
	c.Metrics.ObserveFetch(fetchDuration)

	cat, stats, err := catalog.Parse(strings.NewReader(markup), c.cfg.ShopURL)
	if err != nil {
		c.Metrics.IncCheck("parse_error")
		return "", fmt.Errorf("parse catalog: %w", err)
	}

	c.Metrics.IncCheck("success")
	c.Metrics.SetProducts(len(cat.InStock), len(cat.OutOfStock))
	c.Metrics.AddDropped("unnamed", stats.Unnamed)
	c.Metrics.AddDropped("duplicate", stats.Duplicates)

	slog.Info("catalog checked",
		slog.String("url", c.cfg.ShopURL),
		slog.Duration("fetch", fetchDuration),
		slog.Int("tiles", stats.Tiles),
		slog.Int("in_stock", len(cat.InStock)),
		slog.Int("out_of_stock", len(cat.OutOfStock)),
		slog.Int("unnamed", stats.Unnamed),
		slog.Int("duplicates", stats.Duplicates),
	)

	msg := report.Build(cat, c.cfg.ReportTitle, c.now(), c.cfg.ShopURL)
	if c.cache != nil {
		c.cache.Add(c.cfg.ShopURL, msg)
	}
	return msg, nil
}

func (c *Checker) cachedReport() (string, bool) {
	if c.cache == nil {
		return "", false
	}
	return c.cache.Get(c.cfg.ShopURL)
}

var _ PageFetcher = (*fetch.Fetcher)(nil)
