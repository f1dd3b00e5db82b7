package catalog

import "github.com/PuerkitoBio/goquery"

// tileSelectors are the storefront-theme conventions for a product
// tile, in priority order. WooCommerce grids first, block-grid themes
// last. The first convention with any matches wins; the sets are never
// unioned, so a page matching two conventions is read through the
// higher-priority one only.
var tileSelectors = []string{
	"ul.products li.product",
	"article.product",
	"li.product",
	".wc-block-grid__product",
}

// locateTiles returns the product tiles of the document in document
// order. An empty selection is a valid, reportable state.
func locateTiles(doc *goquery.Document) *goquery.Selection {
	for _, sel := range tileSelectors {
		if tiles := doc.Find(sel); tiles.Length() > 0 {
			return tiles
		}
	}
	return doc.Find(tileSelectors[0])
}
