package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"clipcap/internal/daemon"
)

// apiClient speaks the daemon's HTTP and WebSocket API.
type apiClient struct {
	address string
	http    *http.Client
}

func newAPIClient(address string) *apiClient {
	return &apiClient{
		address: address,
		// Worker calls can run for the length of a transcription; rely on
		// the request context instead of a client-wide timeout.
		http: &http.Client{},
	}
}

func (c *apiClient) endpoint(path string) string {
	return (&url.URL{Scheme: "http", Host: c.address, Path: path}).String()
}

type callResult struct {
	Token  string
	Result json.RawMessage
}

// remoteError is a classified failure reported by the daemon.
type remoteError struct {
	Kind    string
	Message string
}

func (e *remoteError) Error() string { return e.Message }

func (c *apiClient) call(ctx context.Context, token, method string, params json.RawMessage) (callResult, error) {
	body, err := json.Marshal(map[string]any{
		"token":  token,
		"method": method,
		"params": params,
	})
	if err != nil {
		return callResult{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/call"), bytes.NewReader(body))
	if err != nil {
		return callResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return callResult{}, c.wrapDialError(err)
	}
	defer resp.Body.Close()

	var payload struct {
		OK     bool            `json:"ok"`
		Result json.RawMessage `json:"result"`
		Kind   string          `json:"kind"`
		Error  string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return callResult{}, fmt.Errorf("decode response: %w", err)
	}
	result := callResult{Token: resp.Header.Get("X-Clipcap-Request"), Result: payload.Result}
	if !payload.OK {
		if payload.Error == "" {
			payload.Error = fmt.Sprintf("daemon returned status %d", resp.StatusCode)
		}
		return result, &remoteError{Kind: payload.Kind, Message: payload.Error}
	}
	return result, nil
}

func (c *apiClient) status(ctx context.Context) (daemon.Status, error) {
	var status daemon.Status
	if err := c.getJSON(ctx, "/api/status", nil, &status); err != nil {
		return daemon.Status{}, err
	}
	return status, nil
}

type historyRow struct {
	ID           string `json:"id"`
	Method       string `json:"method"`
	StartedAt    string `json:"started_at"`
	DurationMS   int64  `json:"duration_ms"`
	OK           bool   `json:"ok"`
	ErrorKind    string `json:"error_kind"`
	ErrorMessage string `json:"error_message"`
}

func (c *apiClient) history(ctx context.Context, limit int) ([]historyRow, error) {
	var payload struct {
		Calls []historyRow `json:"calls"`
	}
	query := url.Values{"limit": []string{strconv.Itoa(limit)}}
	if err := c.getJSON(ctx, "/api/history", query, &payload); err != nil {
		return nil, err
	}
	return payload.Calls, nil
}

func (c *apiClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.endpoint(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.wrapDialError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Error != "" {
			return errors.New(failure.Error)
		}
		return fmt.Errorf("daemon returned status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// progressEvent mirrors the daemon's WebSocket payload.
type progressEvent struct {
	Type     string  `json:"type"`
	ID       string  `json:"id"`
	Progress float64 `json:"progress"`
	Status   string  `json:"status"`
	Message  string  `json:"message"`
}

// watchEvents streams daemon events to fn until the context is cancelled
// or the connection drops.
func (c *apiClient) watchEvents(ctx context.Context, fn func(progressEvent)) error {
	target := (&url.URL{Scheme: "ws", Host: c.address, Path: "/api/events"}).String()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return c.wrapDialError(err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var event progressEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fn(event)
	}
}

func (c *apiClient) wrapDialError(err error) error {
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return fmt.Errorf("connect to daemon at %s: %v; start it with `clipcapd`", c.address, netErr.Err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("connect to daemon at %s: %v; start it with `clipcapd`", c.address, urlErr.Err)
	}
	return err
}

func formatDuration(ms int64) string {
	return time.Duration(ms * int64(time.Millisecond)).Round(time.Millisecond).String()
}
