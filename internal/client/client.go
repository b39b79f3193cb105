// Package client is a small API client over the medhold-data HTTP interface,
// used by the smoke-check tool and suitable for other Go consumers.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"medhold-data/internal/domain"
	"medhold-data/internal/service"
)

// envelope mirrors the server's Result wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

const resultSuccess = 2000

// Client talks to a running medhold-data instance.
type Client struct {
	http *resty.Client
}

// New creates a Client against the given base URL (e.g. http://localhost:8080).
func New(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

func decode[T any](resp *resty.Response, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, fmt.Errorf("request failed: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return zero, fmt.Errorf("unmarshal envelope (HTTP %d): %w", resp.StatusCode(), err)
	}
	if env.Code != resultSuccess {
		return zero, fmt.Errorf("api error (HTTP %d): %s", resp.StatusCode(), env.Message)
	}
	var out T
	if err := json.Unmarshal(env.Result, &out); err != nil {
		return zero, fmt.Errorf("unmarshal result: %w", err)
	}
	return out, nil
}

// ListPersonnel fetches the active collection with optional filters.
func (c *Client) ListPersonnel(ctx context.Context, search, unit, status string) (*service.ListPersonnelResponse, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"search": search, "unit": unit, "status": status}).
		Get("/api/v1/personnel")
	return decode[*service.ListPersonnelResponse](resp, err)
}

// GetPersonnel fetches one record with its movement and visit history.
func (c *Client) GetPersonnel(ctx context.Context, id int) (*service.PersonnelDetailResponse, error) {
	resp, err := c.http.R().SetContext(ctx).Get(fmt.Sprintf("/api/v1/personnel/%d", id))
	return decode[*service.PersonnelDetailResponse](resp, err)
}

// CreatePersonnel registers a new arrival.
func (c *Client) CreatePersonnel(ctx context.Context, req service.CreatePersonnelRequest) (*domain.PersonnelView, error) {
	resp, err := c.http.R().SetContext(ctx).SetBody(req).Post("/api/v1/personnel")
	return decode[*domain.PersonnelView](resp, err)
}

// AddMovement records a movement event.
func (c *Client) AddMovement(ctx context.Context, req service.AddMovementRequest) (*domain.Movement, error) {
	resp, err := c.http.R().SetContext(ctx).SetBody(req).Post("/api/v1/movements")
	return decode[*domain.Movement](resp, err)
}

// GetStats fetches the dashboard aggregate.
func (c *Client) GetStats(ctx context.Context) (*service.Stats, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/api/v1/stats")
	return decode[*service.Stats](resp, err)
}

// ListProblems fetches the open problems.
func (c *Client) ListProblems(ctx context.Context) ([]domain.Problem, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/api/v1/problems")
	return decode[[]domain.Problem](resp, err)
}
