// Package client is a small HTTP client for the reservation API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/model"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (status=%d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s (status=%d)", e.Message, e.StatusCode)
}

// Client talks to the /api/rent routes of a running server.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New returns a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) CreateReservation(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error) {
	var out model.Reservation
	if err := c.do(ctx, http.MethodPost, "/api/rent/reservations", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TransitionStatus(ctx context.Context, id string, status model.Status) (string, error) {
	var out model.MessageResponse
	path := "/api/rent/reservations/" + url.PathEscape(id) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, model.StatusRequest{Status: status}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ListForTenant lists a tenant's reservations. An empty status lists all of them.
func (c *Client) ListForTenant(ctx context.Context, tenantID string, status model.Status) ([]model.ReservationResponse, error) {
	path := "/api/rent/tenants/" + url.PathEscape(tenantID) + "/reservations"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var out []model.ReservationResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteReservation(ctx context.Context, id, tenantID string) (string, error) {
	var out model.MessageResponse
	path := "/api/rent/tenants/" + url.PathEscape(tenantID) + "/reservations/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var e model.ErrorResponse
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Code: e.Code, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
