package catalog

import (
	"sort"
	"strings"
)

// Sort modes for the storefront grid.
type Sort string

const (
	SortFeatured   Sort = "featured"
	SortPriceAsc   Sort = "price_asc"
	SortPriceDesc  Sort = "price_desc"
	SortRatingDesc Sort = "rating_desc"
)

// CategoryAll is the sentinel meaning "no category filter".
const CategoryAll = "all"

// FilterState drives the pure derivation of the visible grid. It lives in
// memory only and never touches the cache.
type FilterState struct {
	Category string
	Query    string
	Sort     Sort
}

// Visible applies the filter pipeline in fixed order: category filter, then
// text filter (the two intersect), then sort. It is side-effect-free and
// idempotent so the grid can re-derive on every keystroke; the input slice
// is never mutated and ties keep their catalog order.
func Visible(products []Product, f FilterState) []Product {
	out := make([]Product, 0, len(products))

	category := strings.ToLower(strings.TrimSpace(f.Category))
	query := strings.ToLower(strings.TrimSpace(f.Query))
	for _, p := range products {
		if category != "" && category != CategoryAll &&
			!strings.Contains(strings.ToLower(p.ProductType), category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.ProductName), query) &&
			!strings.Contains(strings.ToLower(p.ProductType), query) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortRatingDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}
	// SortFeatured keeps catalog order.
	return out
}
