package order

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/wichananm65/pet-shop-client/internal/gateway"
	"github.com/wichananm65/pet-shop-client/internal/session"
)

// Item is one priced line of a placed order. Prices are frozen at checkout
// time, unlike cart lines which always join against the live catalog.
type Item struct {
	OrderItemID int     `json:"order_item_id" validate:"required"`
	ProductID   int     `json:"product_id" validate:"required"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity" validate:"min=1"`
	SubTotal    float64 `json:"sub_total"`
}

type Payment struct {
	PaymentID     int        `json:"payment_id" validate:"required"`
	OrderID       int        `json:"order_id"`
	PaymentMethod string     `json:"payment_method"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

type Order struct {
	OrderID        int       `json:"order_id" validate:"required"`
	CustomerID     int       `json:"customer_id" validate:"required"`
	OrderDate      time.Time `json:"order_date"`
	TotalAmount    float64   `json:"total_amount"`
	PaymentStatus  string    `json:"payment_status"`
	DeliveryStatus string    `json:"delivery_status"`
	Items          []Item    `json:"items"`
	Payment        *Payment  `json:"payment,omitempty"`
}

type TrackingEvent struct {
	Status    string    `json:"status" validate:"required"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service places and reads orders for the logged-in customer.
type Service struct {
	gw      *gateway.Client
	session *session.Store
	log     zerolog.Logger
}

func NewService(gw *gateway.Client, sess *session.Store, log zerolog.Logger) *Service {
	return &Service{gw: gw, session: sess, log: log.With().Str("component", "order").Logger()}
}

type checkoutRequest struct {
	CustomerID    int    `json:"customer_id"`
	PaymentMethod string `json:"payment_method"`
}

// Checkout turns the current cart into an order. The backend validates
// stock, totals from live prices, and clears the cart; the client only
// consumes the result.
func (s *Service) Checkout(ctx context.Context, paymentMethod string) (*Order, error) {
	me, err := s.session.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	var placed Order
	body := checkoutRequest{CustomerID: me.CustomerID, PaymentMethod: paymentMethod}
	if err := s.gw.Call(ctx, http.MethodPost, "/orders/checkout", gateway.Opt{Body: body}, &placed); err != nil {
		return nil, err
	}
	s.log.Info().Int("order_id", placed.OrderID).Float64("total", placed.TotalAmount).Msg("order placed")
	return &placed, nil
}

// History lists the logged-in customer's orders.
func (s *Service) History(ctx context.Context) ([]Order, error) {
	me, err := s.session.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	var orders []Order
	path := fmt.Sprintf("/orders/customer/%d", me.CustomerID)
	if err := s.gw.Call(ctx, http.MethodGet, path, gateway.Opt{}, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Tracking lists the tracking events recorded for one order.
func (s *Service) Tracking(ctx context.Context, orderID int) ([]TrackingEvent, error) {
	var events []TrackingEvent
	path := fmt.Sprintf("/orders/%d/tracking", orderID)
	if err := s.gw.Call(ctx, http.MethodGet, path, gateway.Opt{}, &events); err != nil {
		return nil, err
	}
	return events, nil
}
