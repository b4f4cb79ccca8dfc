// Package transport talks to the analytics backend.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/stupside/beacon/internal/app"
)

const maxBody = 1 << 20

// Client posts profiles and looks up IP information.
type Client struct {
	http       *http.Client
	visitorLog string
	ipInfo     string
}

// New returns a Client for the configured backend.
func New(cfg app.TransportConfig) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		visitorLog: base.JoinPath(cfg.VisitorLogPath).String(),
		ipInfo:     base.JoinPath(cfg.IPInfoPath).String(),
	}, nil
}

// Submit posts v as JSON to the visitor log endpoint.
func (c *Client) Submit(ctx context.Context, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.visitorLog, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting profile: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("posting profile: unexpected status %s", resp.Status)
	}
	return nil
}

// IPInfo fetches the caller's network location. When the body wraps the
// payload in a truthy "data" field, only that field is returned.
func (c *Client) IPInfo(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ipInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching ip info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetching ip info: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading ip info: %w", err)
	}
	return unwrap(body)
}

func unwrap(body []byte) (json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("ip info is not valid JSON")
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && truthy(envelope.Data) {
		return envelope.Data, nil
	}
	return json.RawMessage(bytes.TrimSpace(body)), nil
}

func truthy(v json.RawMessage) bool {
	switch string(bytes.TrimSpace(v)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}
