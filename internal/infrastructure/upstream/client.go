// Package upstream talks to the shipping pricing API on behalf of a
// dashboard session.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agence-dashboard/internal/domain"
	"agence-dashboard/pkg/logger"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

const retryDelay = 300 * time.Millisecond

// Client builds per-token gateways that share one connection pool.
type Client struct {
	baseURL string
	timeout time.Duration
	base    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		base: &http.Client{
			Transport: http.DefaultTransport,
		},
	}
}

// ForToken returns a gateway whose requests carry token as a bearer credential.
func (c *Client) ForToken(token string) domain.Gateway {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	hc.Timeout = c.timeout
	return &gateway{baseURL: c.baseURL, http: hc}
}

type gateway struct {
	baseURL string
	http    *http.Client
}

// envelope is the common wrapper of every API answer. The payload key varies
// per endpoint, so it is decoded separately from the raw body.
type envelope struct {
	Success *bool      `json:"success"`
	Message flexString `json:"message"`
	Error   flexString `json:"error"`
}

// do sends one request and returns the raw response body. GETs are retried
// once on transport errors, 5xx and 429; anything that mutates is sent once.
func (g *gateway) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = 2
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, lastErr
			case <-time.After(retryDelay):
			}
		}

		start := time.Now()
		data, status, err := g.send(ctx, method, path, payload)
		logger.UpstreamCall(ctx, method, path, status, attempt, time.Since(start), err)
		if err != nil {
			lastErr = &domain.ServerError{
				Status:  http.StatusBadGateway,
				Message: "shipping API unreachable: " + err.Error(),
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if status >= 500 || status == http.StatusTooManyRequests {
			lastErr = serverError(status, data)
			continue
		}
		if status < 200 || status >= 300 {
			return nil, serverError(status, data)
		}

		var env envelope
		if len(bytes.TrimSpace(data)) > 0 && bytes.TrimSpace(data)[0] == '{' {
			if err := json.Unmarshal(data, &env); err == nil && env.Success != nil && !*env.Success {
				return nil, serverError(status, data)
			}
		}
		return data, nil
	}
	return nil, lastErr
}

func (g *gateway) send(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

// serverError keeps the server's own message when it sent one.
func serverError(status int, body []byte) *domain.ServerError {
	e := &domain.ServerError{Status: status}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		e.Message = string(env.Message)
		if e.Message == "" {
			e.Message = string(env.Error)
		}
	}
	if e.Message == "" && status >= 200 && status < 300 {
		e.Message = "request rejected by the shipping API"
	}
	return e
}

var payloadKeys = []string{"tarifs", "tarif", "data", "expeditions", "expedition", "result"}

// unwrap finds the payload inside an envelope. A bare array or an object
// without any known key is returned as is.
func unwrap(data []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return trimmed
	}
	for _, key := range payloadKeys {
		raw, ok := obj[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		// Paginated answers nest the list one level deeper.
		inner := bytes.TrimSpace(raw)
		if len(inner) > 0 && inner[0] == '{' {
			var page map[string]json.RawMessage
			if err := json.Unmarshal(inner, &page); err == nil {
				if rows, ok := page["data"]; ok && len(bytes.TrimSpace(rows)) > 0 && bytes.TrimSpace(rows)[0] == '[' {
					return rows
				}
			}
		}
		return raw
	}
	return trimmed
}

func decodeList[T any](data []byte) ([]T, error) {
	raw := unwrap(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}
	if raw[0] != '[' {
		var one T
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return []T{one}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

func decodeOne[T any](data []byte) (*T, error) {
	raw := unwrap(data)
	if len(raw) > 0 && raw[0] == '[' {
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
