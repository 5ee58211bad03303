package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/wichananm65/pet-shop-client/internal/gateway"
)

// ErrCatalogUnavailable marks a failed catalog fetch. Callers render a
// visible error state on it rather than an empty grid.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Product is a catalog entry as served by /products/. The backend owns it;
// the local copy is a read-through cache.
type Product struct {
	ProductID     int     `json:"product_id" validate:"required"`
	ProductName   string  `json:"product_name" validate:"required"`
	ProductType   string  `json:"product_type" validate:"required"`
	Price         float64 `json:"price" validate:"gt=0"`
	StockQuantity int     `json:"stock_quantity" validate:"min=0"`
	Rating        float64 `json:"rating" validate:"min=0,max=5"`
}

// Cache holds the last-fetched product list. Loads replace the snapshot
// wholesale, never patch it, so readers never see a partially-updated list.
type Cache struct {
	gw *gateway.Client

	mu       sync.RWMutex
	products []Product
	byID     map[int]Product
}

func NewCache(gw *gateway.Client) *Cache {
	return &Cache{gw: gw}
}

// Load fetches the full catalog and swaps it in atomically. A reload started
// while another is in flight is tolerated; the last completion wins.
func (c *Cache) Load(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.gw.Call(ctx, http.MethodGet, "/products/", gateway.Opt{}, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	byID := make(map[int]Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	c.mu.Lock()
	c.products = products
	c.byID = byID
	c.mu.Unlock()
	return c.Products(), nil
}

// Lookup finds a product by id in the current snapshot.
func (c *Cache) Lookup(productID int) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[productID]
	return p, ok
}

// Products returns a copy of the current snapshot in catalog order.
func (c *Cache) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Loaded reports whether a catalog has been fetched at least once.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID != nil
}

// Get fetches a single product directly, bypassing the cache. The product
// detail view uses it so it always shows live stock.
func (c *Cache) Get(ctx context.Context, productID int) (Product, error) {
	var p Product
	err := c.gw.Call(ctx, http.MethodGet, fmt.Sprintf("/products/%d", productID), gateway.Opt{}, &p)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}
