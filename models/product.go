// Package models defines data structures shared across the notifier.
package models

// Product is one catalog tile after classification.
type Product struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	InStock bool   `json:"in_stock"`
}

// Catalog holds the two availability partitions of a parsed shop page,
// each in first-seen document order. No product appears in both.
type Catalog struct {
	InStock    []Product
	OutOfStock []Product
}

// Total returns the number of surviving products across both partitions.
func (c *Catalog) Total() int {
	return len(c.InStock) + len(c.OutOfStock)
}
