package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wichananm65/pet-shop-client/internal/catalog"
	"github.com/wichananm65/pet-shop-client/internal/gateway"
	"github.com/wichananm65/pet-shop-client/internal/session"
)

var (
	// ErrInvalidQuantity rejects a quantity below 1 before any network call.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrCartUnavailable marks a failed cart fetch. Callers render an inline
	// error, not a blank cart.
	ErrCartUnavailable = errors.New("cart unavailable")
)

// Item is a raw cart line as served by /cart/{customer_id}.
type Item struct {
	CartItemID int `json:"cart_item_id" validate:"required"`
	CustomerID int `json:"customer_id"`
	ProductID  int `json:"product_id" validate:"required"`
	Quantity   int `json:"quantity" validate:"min=1"`
}

// LineItem is a raw cart line joined with its catalog product. A line whose
// product is gone from the catalog keeps its quantity (it still counts
// toward the badge) but renders a placeholder name and a zero subtotal.
type LineItem struct {
	CartItemID  int
	ProductID   int
	Quantity    int
	ProductName string
	UnitPrice   float64
	Subtotal    float64
	Missing     bool
}

// State of the cart view. Mutations re-enter Loading; there is no partial or
// optimistic state, the UI never shows a quantity the server has not
// confirmed.
type State int

const (
	Unloaded State = iota
	Loading
	Loaded
	Errored
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return "unloaded"
	}
}

// Reconciler keeps the cart consistent with the backend by refetching and
// recomputing after every mutation rather than patching in place: the
// backend is the only authority on valid quantities and stock.
//
// Within one operation the steps (identity, mutation, reload) run strictly
// in sequence. Across overlapping operations no mutual exclusion is applied;
// the last response to arrive determines the rendered state. That race is
// inherited from the original front-end and deliberately left in place.
type Reconciler struct {
	gw      *gateway.Client
	session *session.Store
	catalog *catalog.Cache
	log     zerolog.Logger

	mu    sync.RWMutex
	state State
	items []LineItem
	total float64
	badge int
}

func NewReconciler(gw *gateway.Client, sess *session.Store, cat *catalog.Cache, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		gw:      gw,
		session: sess,
		catalog: cat,
		log:     log.With().Str("component", "cart").Logger(),
	}
}

// LoadCart fetches the raw cart, joins it against the catalog, and computes
// subtotals and the grand total. The catalog is populated first if it has
// never been loaded.
func (r *Reconciler) LoadCart(ctx context.Context, customerID int) ([]LineItem, float64, error) {
	r.setState(Loading)

	if !r.catalog.Loaded() {
		if _, err := r.catalog.Load(ctx); err != nil {
			r.setState(Errored)
			return nil, 0, err
		}
	}

	var raw []Item
	path := fmt.Sprintf("/cart/%d", customerID)
	if err := r.gw.Call(ctx, http.MethodGet, path, gateway.Opt{}, &raw); err != nil {
		r.setState(Errored)
		return nil, 0, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}

	items, total, badge := r.enrich(raw)

	r.mu.Lock()
	r.state = Loaded
	r.items = items
	r.total = total
	r.badge = badge
	r.mu.Unlock()
	return items, total, nil
}

// enrich joins raw lines to catalog products by product_id.
func (r *Reconciler) enrich(raw []Item) ([]LineItem, float64, int) {
	items := make([]LineItem, 0, len(raw))
	var total float64
	var badge int
	for _, item := range raw {
		line := LineItem{
			CartItemID: item.CartItemID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
		}
		if p, ok := r.catalog.Lookup(item.ProductID); ok {
			line.ProductName = p.ProductName
			line.UnitPrice = p.Price
			line.Subtotal = p.Price * float64(item.Quantity)
		} else {
			line.ProductName = fmt.Sprintf("Product #%d", item.ProductID)
			line.Missing = true
		}
		total += line.Subtotal
		badge += item.Quantity
		items = append(items, line)
	}
	return items, total, badge
}

type addRequest struct {
	CustomerID int `json:"customer_id"`
	ProductID  int `json:"product_id"`
	Quantity   int `json:"quantity"`
}

// AddItem puts quantity units of a product into the current customer's cart.
// It refuses with session.ErrLoginRequired before any network call when no
// customer is logged in, so the UI can prompt re-authentication. A zero
// quantity defaults to 1.
func (r *Reconciler) AddItem(ctx context.Context, productID, quantity int) error {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	me, err := r.session.RequireIdentity(ctx)
	if err != nil {
		return err
	}

	body := addRequest{CustomerID: me.CustomerID, ProductID: productID, Quantity: quantity}
	if err := r.gw.Call(ctx, http.MethodPost, "/cart/add", gateway.Opt{Body: body}, nil); err != nil {
		r.setState(Errored)
		return err
	}

	_, _, err = r.LoadCart(ctx, me.CustomerID)
	return err
}

type updateRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity sets the quantity of one cart line. Quantities below 1 are
// rejected locally, without a network call.
func (r *Reconciler) UpdateQuantity(ctx context.Context, cartItemID, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	me, err := r.session.RequireIdentity(ctx)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/cart/item/%d", cartItemID)
	if err := r.gw.Call(ctx, http.MethodPut, path, gateway.Opt{Body: updateRequest{Quantity: quantity}}, nil); err != nil {
		r.setState(Errored)
		return err
	}

	_, _, err = r.LoadCart(ctx, me.CustomerID)
	return err
}

// RemoveItem deletes one cart line.
func (r *Reconciler) RemoveItem(ctx context.Context, cartItemID int) error {
	me, err := r.session.RequireIdentity(ctx)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/cart/item/%d", cartItemID)
	if err := r.gw.Call(ctx, http.MethodDelete, path, gateway.Opt{}, nil); err != nil {
		r.setState(Errored)
		return err
	}

	_, _, err = r.LoadCart(ctx, me.CustomerID)
	return err
}

// ClearCart empties the given customer's cart.
func (r *Reconciler) ClearCart(ctx context.Context, customerID int) error {
	path := fmt.Sprintf("/cart/clear/%d", customerID)
	if err := r.gw.Call(ctx, http.MethodDelete, path, gateway.Opt{}, nil); err != nil {
		r.setState(Errored)
		return err
	}

	_, _, err := r.LoadCart(ctx, customerID)
	return err
}

// Items returns the last successfully loaded line items.
func (r *Reconciler) Items() []LineItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LineItem, len(r.items))
	copy(out, r.items)
	return out
}

// Total returns the last computed grand total.
func (r *Reconciler) Total() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// BadgeCount is the quantity sum over the last successfully fetched cart,
// including lines whose product is missing from the catalog. It is always
// recomputed from a fresh fetch, never from an in-memory delta.
func (r *Reconciler) BadgeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.badge
}

func (r *Reconciler) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Reconciler) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}
