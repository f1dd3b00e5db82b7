// Package catalog turns raw shop-page markup into a classified product
// catalog. The whole pass is synchronous and side-effect-free: one
// document in, two ordered availability partitions out. It tolerates
// the known range of storefront markup conventions and resolves every
// ambiguity by conservative defaulting rather than erroring, so a
// successfully parsed document always yields a reportable catalog.
package catalog

import (
	"fmt"
	"io"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/oxbi/heathfully/models"
)

// Stats counts what the parse pass saw and dropped.
type Stats struct {
	Tiles      int
	Unnamed    int
	Duplicates int
}

// Parse reads a catalog page and classifies every product tile.
//
// Classification is inStock = buy affordance present AND no explicit
// out-of-stock marker; a marker always overrides a detected buy button.
// Tiles without an extractable name are discarded. Among tiles sharing
// a dedupe key the first in document order wins, and later duplicates
// are dropped even when they would land in the other partition.
//
// Only an unparseable document or base URL is an error; zero tiles is
// an empty catalog, not a failure.
func Parse(markup io.Reader, baseURL string) (*models.Catalog, Stats, error) {
	var stats Stats

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, stats, fmt.Errorf("parse base url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(markup)
	if err != nil {
		return nil, stats, fmt.Errorf("parse markup: %w", err)
	}

	catalog := &models.Catalog{}
	seen := make(map[string]struct{})

	locateTiles(doc).Each(func(_ int, tile *goquery.Selection) {
		stats.Tiles++

		name := extractName(tile)
		if name == "" {
			stats.Unnamed++
			return
		}

		key := DedupeKey(name)
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			return
		}
		seen[key] = struct{}{}

		product := models.Product{
			Name:    name,
			URL:     extractURL(tile, base),
			InStock: hasBuyAffordance(tile) && !isMarkedOutOfStock(tile),
		}
		if product.InStock {
			catalog.InStock = append(catalog.InStock, product)
		} else {
			catalog.OutOfStock = append(catalog.OutOfStock, product)
		}
	})

	return catalog, stats, nil
}
