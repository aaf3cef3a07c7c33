// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package client implements a client for the route-manager command API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/wneessen/route-manager/internal/config"
	"github.com/wneessen/route-manager/internal/logger"
	"github.com/wneessen/route-manager/internal/routemgr"
)

const (
	// DefaultTimeout is the default timeout value for the Client
	DefaultTimeout = time.Second * 10
)

var (
	// version is the version of the application (will be set at build time)
	version = "dev"
	// UserAgent is the User-Agent that the client sends with API requests
	UserAgent = fmt.Sprintf("routectl/%s (%s; %s)", version, runtime.GOOS, runtime.GOARCH)
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("route-manager API returned %d: %s", e.Code, e.Message)
}

// Client is a type wrapper for the Go stdlib http.Client and the API base URL
type Client struct {
	*http.Client
	baseURL *url.URL
	logger  *logger.Logger
}

// New returns a new Client for the API at baseURL. A base URL without scheme is taken as
// host:port and served over plain HTTP.
func New(baseURL string, log *logger.Logger) (*Client, error) {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	return &Client{
		Client:  &http.Client{Timeout: DefaultTimeout},
		baseURL: u,
		logger:  log,
	}, nil
}

// Status returns the route manager state.
func (c *Client) Status(ctx context.Context) (routemgr.Status, error) {
	return c.do(ctx, http.MethodGet, "/route/status", nil)
}

// NewWaypoint appends a waypoint to the standby route.
func (c *Client) NewWaypoint(ctx context.Context, field1, field2 float64, mode int) (routemgr.Status, error) {
	body := map[string]any{"field1": field1, "field2": field2, "mode": mode}
	return c.do(ctx, http.MethodPost, "/route/waypoints", body)
}

// Swap activates the standby route.
func (c *Client) Swap(ctx context.Context) (routemgr.Status, error) {
	return c.do(ctx, http.MethodPost, "/route/swap", struct{}{})
}

// LoadRoute builds the waypoints into the standby route and activates it.
func (c *Client) LoadRoute(ctx context.Context, waypoints []config.Waypoint) (routemgr.Status, error) {
	return c.do(ctx, http.MethodPost, "/route", config.RouteDocument{Waypoints: waypoints})
}

// ClearStandby empties the standby route.
func (c *Client) ClearStandby(ctx context.Context) (routemgr.Status, error) {
	return c.do(ctx, http.MethodDelete, "/route/standby", nil)
}

// Snapshot returns the value of every bus signal.
func (c *Client) Snapshot(ctx context.Context) (map[string]float64, error) {
	snap := make(map[string]float64)
	if err := c.request(ctx, http.MethodGet, "/bus", nil, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (routemgr.Status, error) {
	var status routemgr.Status
	err := c.request(ctx, method, path, body, &status)
	return status, err
}

// request performs the HTTP request and JSON-unmarshals the response into target
func (c *Client) request(ctx context.Context, method, path string, body, target any) error {
	var reader io.Reader
	if body != nil {
		buf := bytes.NewBuffer(nil)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = buf
	}

	// Prepare HTTP request
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return fmt.Errorf("failed create new HTTP request with context: %w", err)
	}
	request.Header.Set("User-Agent", UserAgent)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	// Execute HTTP request
	response, err := c.Do(request)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Error("failed to close HTTP response body", logger.Err(err))
		}
	}(response.Body)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err = json.NewDecoder(response.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(response.StatusCode)
		}
		return &StatusError{Code: response.StatusCode, Message: apiErr.Error}
	}

	// Unmarshal the JSON API response into target
	if err = json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}
