package catalog

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// nameSelectors are the conventional title elements, in priority order.
var nameSelectors = []string{
	".woocommerce-loop-product__title",
	".product-title",
	"h2",
	"h3",
	"h4",
}

// extractName returns the tile's display name, or "" when no candidate
// yields non-empty text. Image alt text is the last resort.
func extractName(tile *goquery.Selection) string {
	for _, sel := range nameSelectors {
		if name := CollapseText(tile.Find(sel).First().Text()); name != "" {
			return name
		}
	}
	if alt := CollapseText(tile.Find("img[alt]").First().AttrOr("alt", "")); alt != "" {
		return alt
	}
	return ""
}

// extractURL returns the tile's product link resolved against base.
// The WooCommerce loop-product link is preferred over any plain link;
// a tile without links falls back to the base URL itself.
func extractURL(tile *goquery.Selection, base *url.URL) string {
	link := tile.Find("a.woocommerce-LoopProduct-link").First()
	if link.Length() == 0 {
		link = tile.Find("a[href]").First()
	}
	href, ok := link.Attr("href")
	if !ok {
		return base.String()
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return base.String()
	}
	return resolved.String()
}
