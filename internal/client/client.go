// Package client is a typed HTTP client for the route-tracker API, used by
// the CLI commands that talk to a running server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ecinar/route-tracker/internal/user"
	"github.com/ecinar/route-tracker/internal/visit"
)

// Client talks to a route-tracker server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the given server. token may be empty for login.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// Login authenticates and returns the bearer token plus the account.
func (c *Client) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	var resp struct {
		Token string     `json:"token"`
		User  *user.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return "", nil, err
	}
	return resp.Token, resp.User, nil
}

// ListVisits returns the caller's visits, optionally filtered by status.
func (c *Client) ListVisits(ctx context.Context, status string) ([]*visit.Visit, error) {
	path := "/api/visits"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var visits []*visit.Visit
	if err := c.do(ctx, http.MethodGet, path, nil, &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// TodayVisits returns visits planned for today.
func (c *Client) TodayVisits(ctx context.Context) ([]*visit.Visit, error) {
	var visits []*visit.Visit
	if err := c.do(ctx, http.MethodGet, "/api/visits/today", nil, &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// GetVisit returns one visit.
func (c *Client) GetVisit(ctx context.Context, id string) (*visit.Visit, error) {
	var v visit.Visit
	if err := c.do(ctx, http.MethodGet, "/api/visits/"+url.PathEscape(id), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Location is a device position sent with a transition.
type Location struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	AccuracyM float64 `json:"accuracy_m,omitempty"`
}

// StartVisit starts a planned visit from the given position.
func (c *Client) StartVisit(ctx context.Context, id string, loc *Location) (*visit.Visit, error) {
	body := map[string]interface{}{}
	if loc != nil {
		body["location"] = loc
	}
	var v visit.Visit
	if err := c.do(ctx, http.MethodPost, "/api/visits/"+url.PathEscape(id)+"/start", body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// OrderLine is one product line sent when completing a visit.
type OrderLine struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// CompleteVisit finishes an in-progress visit with optional orders and a
// base64 signature.
func (c *Client) CompleteVisit(ctx context.Context, id string, loc *Location, orders []OrderLine, notes, signature string) (*visit.Visit, error) {
	body := map[string]interface{}{}
	if loc != nil {
		body["location"] = loc
	}
	if orders != nil {
		body["orders"] = orders
	}
	if notes != "" {
		body["notes"] = notes
	}
	if signature != "" {
		body["signature"] = signature
	}
	var v visit.Visit
	if err := c.do(ctx, http.MethodPost, "/api/visits/"+url.PathEscape(id)+"/complete", body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// CancelVisit abandons a visit.
func (c *Client) CancelVisit(ctx context.Context, id, reason string) (*visit.Visit, error) {
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	var v visit.Visit
	if err := c.do(ctx, http.MethodPost, "/api/visits/"+url.PathEscape(id)+"/cancel", body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = resp.Status
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
