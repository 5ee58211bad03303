package catalog

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/pet-shop-client/internal/backendtest"
	"github.com/wichananm65/pet-shop-client/internal/gateway"
)

func TestCacheLoadAndLookup(t *testing.T) {
	backend := backendtest.New()
	bedID := backend.AddProduct("Dog Bed", "Bedding", 500, 10, 4.5)
	toyID := backend.AddProduct("Cat Toy", "Toys", 150, 25, 4.0)
	srv := backend.Server()
	defer srv.Close()

	cache := NewCache(gateway.New(srv.URL, zerolog.Nop()))
	require.False(t, cache.Loaded())

	products, err := cache.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.True(t, cache.Loaded())

	bed, ok := cache.Lookup(bedID)
	require.True(t, ok)
	require.Equal(t, "Dog Bed", bed.ProductName)
	require.Equal(t, 500.0, bed.Price)

	_, ok = cache.Lookup(999)
	require.False(t, ok)

	// a reload replaces the snapshot wholesale
	backend.RemoveProduct(toyID)
	_, err = cache.Load(context.Background())
	require.NoError(t, err)
	_, ok = cache.Lookup(toyID)
	require.False(t, ok, "stale product must not survive a reload")
}

func TestCacheLoadFailureIsCatalogUnavailable(t *testing.T) {
	backend := backendtest.New()
	srv := backend.Server()
	srv.Close()

	cache := NewCache(gateway.New(srv.URL, zerolog.Nop()))
	_, err := cache.Load(context.Background())
	require.ErrorIs(t, err, ErrCatalogUnavailable)
	require.False(t, cache.Loaded(), "a failed load must not mark the cache as populated")
}

func TestCacheGetFetchesDirectly(t *testing.T) {
	backend := backendtest.New()
	bedID := backend.AddProduct("Dog Bed", "Bedding", 500, 10, 4.5)
	srv := backend.Server()
	defer srv.Close()

	cache := NewCache(gateway.New(srv.URL, zerolog.Nop()))
	p, err := cache.Get(context.Background(), bedID)
	require.NoError(t, err)
	require.Equal(t, "Dog Bed", p.ProductName)

	_, err = cache.Get(context.Background(), 999)
	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 404, apiErr.Status)
}
