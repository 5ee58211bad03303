package cart

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/pet-shop-client/internal/backendtest"
	"github.com/wichananm65/pet-shop-client/internal/catalog"
	"github.com/wichananm65/pet-shop-client/internal/gateway"
	"github.com/wichananm65/pet-shop-client/internal/session"
	"github.com/wichananm65/pet-shop-client/internal/storage"
)

type fixture struct {
	backend    *backendtest.Backend
	reconciler *Reconciler
	session    *session.Store
	customerID int
	bedID      int
	toyID      int
}

func newFixture(t *testing.T, loggedIn bool) *fixture {
	t.Helper()
	backend := backendtest.New()
	bedID := backend.AddProduct("Dog Bed", "Bedding", 500, 10, 4.5)
	toyID := backend.AddProduct("Cat Toy", "Toys", 150, 25, 4.0)
	customerID := backend.AddCustomer("Asha", "asha@example.com", "hunter22")
	srv := backend.Server()
	t.Cleanup(srv.Close)

	gw := gateway.New(srv.URL, zerolog.Nop())
	sess := session.NewStore(gw, storage.NewInMemoryStore(), zerolog.Nop())
	if loggedIn {
		sess.SetToken(backend.TokenFor(customerID))
	}
	cache := catalog.NewCache(gw)

	return &fixture{
		backend:    backend,
		reconciler: NewReconciler(gw, sess, cache, zerolog.Nop()),
		session:    sess,
		customerID: customerID,
		bedID:      bedID,
		toyID:      toyID,
	}
}

func TestLoadCartEnrichesAndTotals(t *testing.T) {
	f := newFixture(t, true)
	f.backend.AddCartItem(f.customerID, f.bedID, 2)

	items, total, err := f.reconciler.LoadCart(context.Background(), f.customerID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Dog Bed", items[0].ProductName)
	require.Equal(t, 500.0, items[0].UnitPrice)
	require.Equal(t, 1000.0, items[0].Subtotal)
	require.Equal(t, 1000.0, total)
	require.Equal(t, 2, f.reconciler.BadgeCount())
	require.Equal(t, Loaded, f.reconciler.State())
}

func TestLoadCartKeepsMissingProductInBadge(t *testing.T) {
	f := newFixture(t, true)
	f.backend.AddCartItem(f.customerID, f.bedID, 2)
	f.backend.AddCartItem(f.customerID, f.toyID, 3)
	f.backend.RemoveProduct(f.toyID)

	items, total, err := f.reconciler.LoadCart(context.Background(), f.customerID)
	require.NoError(t, err)
	require.Len(t, items, 2, "a line with a deleted product must not be dropped")

	missing := items[1]
	require.True(t, missing.Missing)
	require.Equal(t, "Product #2", missing.ProductName)
	require.Zero(t, missing.Subtotal, "missing products contribute nothing to the total")
	require.Equal(t, 1000.0, total)
	require.Equal(t, 5, f.reconciler.BadgeCount(), "badge counts quantities even for missing products")
}

func TestAddItemRoundTrip(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.reconciler.AddItem(context.Background(), f.bedID, 1))
	items := f.reconciler.Items()
	require.Len(t, items, 1)
	require.Equal(t, 1, items[0].Quantity)

	// adding the same product again increments the existing line
	require.NoError(t, f.reconciler.AddItem(context.Background(), f.bedID, 2))
	items = f.reconciler.Items()
	require.Len(t, items, 1)
	require.Equal(t, 3, items[0].Quantity)
	require.Equal(t, 3, f.reconciler.BadgeCount())
	require.Equal(t, 1500.0, f.reconciler.Total())
}

func TestAddItemRequiresLogin(t *testing.T) {
	f := newFixture(t, false)

	err := f.reconciler.AddItem(context.Background(), f.bedID, 1)
	require.ErrorIs(t, err, session.ErrLoginRequired)
	require.Zero(t, f.backend.Requests(), "a refused add must not issue any network call")
}

func TestUpdateQuantityRejectsBelowOneLocally(t *testing.T) {
	f := newFixture(t, true)

	for _, quantity := range []int{0, -1, -100} {
		err := f.reconciler.UpdateQuantity(context.Background(), 1, quantity)
		require.ErrorIs(t, err, ErrInvalidQuantity)
	}
	require.Zero(t, f.backend.Requests(), "invalid quantities are rejected before any network call")
}

func TestUpdateQuantityReconciles(t *testing.T) {
	f := newFixture(t, true)
	itemID := f.backend.AddCartItem(f.customerID, f.bedID, 1)

	require.NoError(t, f.reconciler.UpdateQuantity(context.Background(), itemID, 4))
	items := f.reconciler.Items()
	require.Len(t, items, 1)
	require.Equal(t, 4, items[0].Quantity)
	require.Equal(t, 2000.0, f.reconciler.Total())
}

func TestRemoveItemReconciles(t *testing.T) {
	f := newFixture(t, true)
	bedItem := f.backend.AddCartItem(f.customerID, f.bedID, 2)
	f.backend.AddCartItem(f.customerID, f.toyID, 1)

	require.NoError(t, f.reconciler.RemoveItem(context.Background(), bedItem))
	items := f.reconciler.Items()
	require.Len(t, items, 1)
	require.Equal(t, f.toyID, items[0].ProductID)
	require.Equal(t, 1, f.reconciler.BadgeCount())
}

func TestClearCartReconciles(t *testing.T) {
	f := newFixture(t, true)
	f.backend.AddCartItem(f.customerID, f.bedID, 2)
	f.backend.AddCartItem(f.customerID, f.toyID, 1)

	require.NoError(t, f.reconciler.ClearCart(context.Background(), f.customerID))
	require.Empty(t, f.reconciler.Items())
	require.Zero(t, f.reconciler.BadgeCount())
	require.Zero(t, f.reconciler.Total())
	require.Equal(t, Loaded, f.reconciler.State())
}

func TestStateMachine(t *testing.T) {
	f := newFixture(t, true)
	require.Equal(t, Unloaded, f.reconciler.State())

	_, _, err := f.reconciler.LoadCart(context.Background(), f.customerID)
	require.NoError(t, err)
	require.Equal(t, Loaded, f.reconciler.State())

	// a failed fetch lands in Errored, not a blank Loaded cart
	broken := newFixture(t, true)
	srvLess := gateway.New("http://127.0.0.1:1", zerolog.Nop())
	broken.reconciler.gw = srvLess
	_, _, err = broken.reconciler.LoadCart(context.Background(), broken.customerID)
	require.Error(t, err)
	require.Equal(t, Errored, broken.reconciler.State())
}

func TestLoadCartPopulatesCatalogWhenEmpty(t *testing.T) {
	f := newFixture(t, true)
	f.backend.AddCartItem(f.customerID, f.bedID, 1)

	// the reconciler loads the catalog itself when it has never been fetched
	items, _, err := f.reconciler.LoadCart(context.Background(), f.customerID)
	require.NoError(t, err)
	require.Equal(t, "Dog Bed", items[0].ProductName)
}
