package catalog

import (
	"reflect"
	"testing"
)

func sampleCatalog() []Product {
	return []Product{
		{ProductID: 1, ProductName: "Dog Bed", ProductType: "Bedding", Price: 500, StockQuantity: 10, Rating: 4.5},
		{ProductID: 2, ProductName: "Cat Toy", ProductType: "Toys", Price: 150, StockQuantity: 25, Rating: 4.0},
		{ProductID: 3, ProductName: "Dog Leash", ProductType: "Toys", Price: 150, StockQuantity: 8, Rating: 3.5},
		{ProductID: 4, ProductName: "Bird Seed", ProductType: "Food", Price: 90, StockQuantity: 40, Rating: 4.0},
	}
}

func ids(products []Product) []int {
	out := make([]int, 0, len(products))
	for _, p := range products {
		out = append(out, p.ProductID)
	}
	return out
}

func TestVisibleQueryFilter(t *testing.T) {
	got := Visible(sampleCatalog(), FilterState{Category: CategoryAll, Query: "dog", Sort: SortFeatured})
	want := []int{1, 3}
	if !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected products %v, got %v", want, ids(got))
	}
}

func TestVisibleQueryMatchesType(t *testing.T) {
	// "toys" matches product_type, not name
	got := Visible(sampleCatalog(), FilterState{Category: CategoryAll, Query: "toys", Sort: SortFeatured})
	if !reflect.DeepEqual(ids(got), []int{2, 3}) {
		t.Fatalf("expected [2 3], got %v", ids(got))
	}
}

func TestVisibleCategoryIntersectsQuery(t *testing.T) {
	// category and query intersect, never union
	got := Visible(sampleCatalog(), FilterState{Category: "toys", Query: "cat", Sort: SortFeatured})
	if !reflect.DeepEqual(ids(got), []int{2}) {
		t.Fatalf("expected [2], got %v", ids(got))
	}
}

func TestVisibleCategoryIsCaseInsensitiveSubstring(t *testing.T) {
	got := Visible(sampleCatalog(), FilterState{Category: "BED", Sort: SortFeatured})
	if !reflect.DeepEqual(ids(got), []int{1}) {
		t.Fatalf("expected [1], got %v", ids(got))
	}
}

func TestVisibleSortModes(t *testing.T) {
	catalog := sampleCatalog()

	cases := []struct {
		name string
		sort Sort
		want []int
	}{
		{"featured keeps catalog order", SortFeatured, []int{1, 2, 3, 4}},
		// products 2 and 3 share a price; stable sort keeps 2 before 3
		{"price ascending is stable for ties", SortPriceAsc, []int{4, 2, 3, 1}},
		{"price descending", SortPriceDesc, []int{1, 2, 3, 4}},
		// products 2 and 4 share a rating; 2 stays first
		{"rating descending is stable for ties", SortRatingDesc, []int{1, 2, 4, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Visible(catalog, FilterState{Category: CategoryAll, Sort: tc.sort})
			if !reflect.DeepEqual(ids(got), tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, ids(got))
			}
		})
	}
}

func TestVisibleIsIdempotentAndPure(t *testing.T) {
	catalog := sampleCatalog()
	state := FilterState{Category: CategoryAll, Query: "o", Sort: SortPriceAsc}

	first := Visible(catalog, state)
	second := Visible(catalog, state)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two identical derivations differ: %v vs %v", ids(first), ids(second))
	}
	// the input slice must keep its original order
	if !reflect.DeepEqual(ids(catalog), []int{1, 2, 3, 4}) {
		t.Fatalf("input slice was mutated: %v", ids(catalog))
	}
}

func TestVisibleEmptyStates(t *testing.T) {
	if got := Visible(nil, FilterState{Category: CategoryAll, Sort: SortFeatured}); len(got) != 0 {
		t.Fatalf("expected empty result for nil catalog, got %v", ids(got))
	}
	got := Visible(sampleCatalog(), FilterState{Sort: SortFeatured})
	// empty category behaves like the "all" sentinel
	if len(got) != 4 {
		t.Fatalf("expected full catalog for empty filter, got %v", ids(got))
	}
}
