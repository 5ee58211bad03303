package review

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/pet-shop-client/internal/backendtest"
	"github.com/wichananm65/pet-shop-client/internal/gateway"
	"github.com/wichananm65/pet-shop-client/internal/session"
	"github.com/wichananm65/pet-shop-client/internal/storage"
)

func newFixture(t *testing.T, loggedIn bool) (*Service, *backendtest.Backend, int) {
	t.Helper()
	backend := backendtest.New()
	bedID := backend.AddProduct("Dog Bed", "Bedding", 500, 10, 4.5)
	customerID := backend.AddCustomer("Asha", "asha@example.com", "hunter22")
	srv := backend.Server()
	t.Cleanup(srv.Close)

	gw := gateway.New(srv.URL, zerolog.Nop())
	sess := session.NewStore(gw, storage.NewInMemoryStore(), zerolog.Nop())
	if loggedIn {
		sess.SetToken(backend.TokenFor(customerID))
	}
	return NewService(gw, sess, zerolog.Nop()), backend, bedID
}

func TestSubmitAndList(t *testing.T) {
	svc, _, bedID := newFixture(t, true)

	created, err := svc.Submit(context.Background(), bedID, 4, "Great bed, dog approves")
	require.NoError(t, err)
	require.Equal(t, 4.0, created.Rating)
	require.NotNil(t, created.Comment)

	reviews, err := svc.ForProduct(context.Background(), bedID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.Equal(t, created.ReviewID, reviews[0].ReviewID)
}

func TestSubmitRejectsOutOfRangeRatingLocally(t *testing.T) {
	svc, backend, bedID := newFixture(t, true)

	for _, rating := range []float64{0, 0.5, 5.5, -1} {
		_, err := svc.Submit(context.Background(), bedID, rating, "")
		require.ErrorIs(t, err, ErrInvalidRating)
	}
	require.Zero(t, backend.Requests(), "invalid ratings are rejected before any network call")
}

func TestSubmitRequiresLogin(t *testing.T) {
	svc, backend, bedID := newFixture(t, false)

	_, err := svc.Submit(context.Background(), bedID, 5, "")
	require.ErrorIs(t, err, session.ErrLoginRequired)
	require.Zero(t, backend.Requests())
}

func TestForProductEmpty(t *testing.T) {
	svc, _, bedID := newFixture(t, true)

	reviews, err := svc.ForProduct(context.Background(), bedID)
	require.NoError(t, err)
	require.Empty(t, reviews)
}
