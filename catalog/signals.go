package catalog

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const oosMarkerSelector = ".outofstock, .stock.out-of-stock, .badge.out-of-stock"

const addToCartSelector = "a.add_to_cart_button, button.add_to_cart_button"

// Generic button-like elements considered for the "Buy Now" fallback.
const buttonLikeSelector = "a.button, button, .btn, .button"

var buyNowRe = regexp.MustCompile(`\bbuy\s*now\b`)

// isMarkedOutOfStock reports whether the tile carries an explicit
// out-of-stock marker class or says "out of stock" anywhere in its
// text content.
func isMarkedOutOfStock(tile *goquery.Selection) bool {
	if tile.Find(oosMarkerSelector).Length() > 0 {
		return true
	}
	text := strings.ToLower(CollapseText(tile.Text()))
	return strings.Contains(text, "out of stock")
}

// hasBuyAffordance reports whether the tile contains an enabled
// purchase control. Only elements nested inside the tile are trusted:
// title and image links exist regardless of stock state and must never
// count. The WooCommerce add-to-cart convention is checked across the
// whole tile first; the "Buy Now" text fallback applies only when no
// add-to-cart control qualifies.
func hasBuyAffordance(tile *goquery.Selection) bool {
	enabled := false
	tile.Find(addToCartSelector).EachWithBreak(func(_ int, b *goquery.Selection) bool {
		if isDisabled(b) {
			return true
		}
		enabled = true
		return false
	})
	if enabled {
		return true
	}

	tile.Find(buttonLikeSelector).EachWithBreak(func(_ int, b *goquery.Selection) bool {
		text := strings.ToLower(CollapseText(b.Text()))
		if !buyNowRe.MatchString(text) {
			return true
		}
		if isDisabled(b) {
			return true
		}
		enabled = true
		return false
	})
	return enabled
}

// isDisabled applies the three independent disabled indicators: the
// disabled attribute, aria-disabled="true", and a "disabled" class
// token.
func isDisabled(el *goquery.Selection) bool {
	if _, ok := el.Attr("disabled"); ok {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(el.AttrOr("aria-disabled", "")), "true") {
		return true
	}
	return el.HasClass("disabled")
}
