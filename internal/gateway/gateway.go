package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnreachable marks a network-layer failure: the backend host could not be
// reached at all. A reachable backend answering with a non-2xx status is an
// *APIError instead.
var ErrUnreachable = errors.New("backend unreachable")

// APIError is a reachable-but-failed response, normalized from the backend's
// {"detail": "..."} error body.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// IsUnauthorized reports whether err is an APIError carrying an authorization
// failure status.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
	}
	return false
}

// Opt carries per-call options: an optional JSON body and an optional bearer
// token.
type Opt struct {
	Body  any
	Token string
}

// Client is the single chokepoint for all backend calls. Every higher
// component goes through Call so failures arrive in one uniform shape.
type Client struct {
	baseURL  string
	client   *http.Client
	validate *validator.Validate
	log      zerolog.Logger
}

func New(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		client:   &http.Client{},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With().Str("component", "gateway").Logger(),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Call issues one request and decodes the JSON response into out (which may
// be nil for calls whose body the caller does not need). Responses are
// validated against the expected shape before they are handed back.
func (c *Client) Call(ctx context.Context, method, path string, opt Opt, out any) error {
	var body io.Reader
	if opt.Body != nil {
		buf, err := json.Marshal(opt.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if opt.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opt.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opt.Token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		c.log.Debug().Str("method", method).Str("path", path).Err(err).Msg("request failed")
		return fmt.Errorf("%w: cannot reach backend at %s", ErrUnreachable, c.baseURL)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: cannot reach backend at %s", ErrUnreachable, c.baseURL)
	}

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", res.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api call")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{Status: res.StatusCode, Detail: errorDetail(data)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	if err := c.validateShape(ctx, out); err != nil {
		return fmt.Errorf("unexpected response shape from %s: %w", path, err)
	}
	return nil
}

// Health checks GET /health and returns the backend's status message.
func (c *Client) Health(ctx context.Context) (string, error) {
	var res struct {
		Message string `json:"message" validate:"required"`
	}
	if err := c.Call(ctx, http.MethodGet, "/health", Opt{}, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func errorDetail(data []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Detail
}

// validateShape runs struct validation over a decoded response. Slices are
// validated element by element so list endpoints get the same treatment.
func (c *Client) validateShape(ctx context.Context, out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return c.validate.StructCtx(ctx, v.Interface())
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			for elem.Kind() == reflect.Pointer {
				if elem.IsNil() {
					return nil
				}
				elem = elem.Elem()
			}
			if elem.Kind() != reflect.Struct {
				return nil
			}
			if err := c.validate.StructCtx(ctx, elem.Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}
