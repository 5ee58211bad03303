package review

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/wichananm65/pet-shop-client/internal/gateway"
	"github.com/wichananm65/pet-shop-client/internal/session"
)

// ErrInvalidRating rejects an out-of-range rating before any network call.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type Review struct {
	ReviewID   int       `json:"review_id" validate:"required"`
	CustomerID int       `json:"customer_id"`
	ProductID  int       `json:"product_id" validate:"required"`
	Rating     float64   `json:"rating" validate:"min=1,max=5"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Service submits and reads product reviews.
type Service struct {
	gw      *gateway.Client
	session *session.Store
	log     zerolog.Logger
}

func NewService(gw *gateway.Client, sess *session.Store, log zerolog.Logger) *Service {
	return &Service{gw: gw, session: sess, log: log.With().Str("component", "review").Logger()}
}

type submitRequest struct {
	CustomerID int     `json:"customer_id"`
	ProductID  int     `json:"product_id"`
	Rating     float64 `json:"rating"`
	Comment    *string `json:"comment,omitempty"`
}

// Submit posts a review as the logged-in customer. Ratings outside 1..5 are
// rejected locally, matching the backend's own bounds.
func (s *Service) Submit(ctx context.Context, productID int, rating float64, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	me, err := s.session.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	body := submitRequest{CustomerID: me.CustomerID, ProductID: productID, Rating: rating}
	if comment != "" {
		body.Comment = &comment
	}

	var created Review
	if err := s.gw.Call(ctx, http.MethodPost, "/reviews/", gateway.Opt{Body: body}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ForProduct lists the reviews recorded for one product.
func (s *Service) ForProduct(ctx context.Context, productID int) ([]Review, error) {
	var reviews []Review
	path := fmt.Sprintf("/reviews/product/%d", productID)
	if err := s.gw.Call(ctx, http.MethodGet, path, gateway.Opt{}, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
