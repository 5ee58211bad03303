package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wichananm65/pet-shop-client/internal/gateway"
	"github.com/wichananm65/pet-shop-client/internal/storage"
)

// ErrLoginRequired is returned by customer-gated operations attempted while
// no customer is logged in.
var ErrLoginRequired = errors.New("login required")

// Customer is the authenticated customer identity served by /customers/me.
type Customer struct {
	CustomerID int     `json:"customer_id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	ContactNo  *string `json:"contact_no,omitempty"`
	PetType    *string `json:"pet_type,omitempty"`
}

// Store owns the bearer-token lifecycle and a single cached identity.
//
// The identity is a cache, not a source of truth: it stays valid until the
// token changes or a request authenticated by it is rejected, at which point
// the store self-heals by clearing both.
type Store struct {
	gw      *gateway.Client
	storage storage.Store
	log     zerolog.Logger

	mu       sync.Mutex
	identity *Customer
}

func NewStore(gw *gateway.Client, st storage.Store, log zerolog.Logger) *Store {
	return &Store{
		gw:      gw,
		storage: st,
		log:     log.With().Str("component", "session").Logger(),
	}
}

// Token reads the persisted credential. Empty means logged out.
func (s *Store) Token() string {
	token, err := s.storage.Get(storage.TokenKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("token read failed")
		return ""
	}
	return token
}

// SetToken persists a credential. An empty token is a no-op, never an
// implicit clear; logging out goes through ClearToken.
func (s *Store) SetToken(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.currentTokenLocked() {
		s.identity = nil
	}
	if err := s.storage.Set(storage.TokenKey, token); err != nil {
		s.log.Warn().Err(err).Msg("token write failed")
	}
}

// ClearToken removes the persisted credential and drops the cached identity.
func (s *Store) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	if err := s.storage.Delete(storage.TokenKey); err != nil {
		s.log.Warn().Err(err).Msg("token delete failed")
	}
}

// Logout is ClearToken under the name the UI used.
func (s *Store) Logout() { s.ClearToken() }

// ResolveIdentity returns the current customer, or nil when logged out.
// "Not logged in" is an expected steady state, not an error. A cached
// identity is returned without a network call. A token the backend rejects
// is treated as expired: the store clears it and reports logged out instead
// of surfacing an error to unrelated callers.
func (s *Store) ResolveIdentity(ctx context.Context) (*Customer, error) {
	token := s.Token()
	if token == "" {
		return nil, nil
	}

	s.mu.Lock()
	if s.identity != nil {
		me := s.identity
		s.mu.Unlock()
		return me, nil
	}
	s.mu.Unlock()

	var me Customer
	err := s.gw.Call(ctx, http.MethodGet, "/customers/me", gateway.Opt{Token: token}, &me)
	if err != nil {
		if gateway.IsUnauthorized(err) {
			s.log.Info().Msg("stored token rejected, clearing session")
			s.ClearToken()
			return nil, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.identity = &me
	s.mu.Unlock()
	return &me, nil
}

// RequireIdentity resolves the identity and fails with ErrLoginRequired when
// logged out. Mutating flows use it so they refuse before touching the
// network.
func (s *Store) RequireIdentity(ctx context.Context) (*Customer, error) {
	me, err := s.ResolveIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return nil, ErrLoginRequired
	}
	return me, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string   `json:"access_token" validate:"required"`
	TokenType   string   `json:"token_type"`
	Customer    Customer `json:"customer"`
}

// Login exchanges credentials for a bearer token, persists it, and caches
// the customer the backend returned alongside it.
func (s *Store) Login(ctx context.Context, email, password string) (*Customer, error) {
	var res loginResponse
	err := s.gw.Call(ctx, http.MethodPost, "/customers/login",
		gateway.Opt{Body: loginRequest{Email: email, Password: password}}, &res)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.identity = &res.Customer
	s.mu.Unlock()
	if err := s.storage.Set(storage.TokenKey, res.AccessToken); err != nil {
		s.log.Warn().Err(err).Msg("token write failed")
	}
	return &res.Customer, nil
}

// RegisterRequest is the /customers/register payload.
type RegisterRequest struct {
	Name      string  `json:"name" validate:"required"`
	ContactNo *string `json:"contact_no,omitempty"`
	Email     string  `json:"email" validate:"required,email"`
	PetType   *string `json:"pet_type,omitempty"`
	Password  string  `json:"password" validate:"required,min=4"`
}

// Register creates a customer account. It does not log the customer in; the
// UI always follows up with an explicit Login.
func (s *Store) Register(ctx context.Context, req RegisterRequest) (*Customer, error) {
	var created Customer
	err := s.gw.Call(ctx, http.MethodPost, "/customers/register", gateway.Opt{Body: req}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) currentTokenLocked() string {
	token, err := s.storage.Get(storage.TokenKey)
	if err != nil {
		return ""
	}
	return token
}
