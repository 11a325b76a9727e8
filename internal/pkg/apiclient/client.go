package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cmlabs-hris/attendance-console/internal/config"
)

const maxResponseBytes = 4 << 20

// Client talks to the attendance backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewClient creates a client for the configured backend.
func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		token:      cfg.Token,
	}
}

// WithToken returns a copy of the client that authenticates as token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

type tokenKey struct{}

// ContextWithToken attaches a bearer token to ctx. It takes precedence over
// the client's own token.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Pagination mirrors the backend list envelope.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

type envelope struct {
	Success     *bool           `json:"success"`
	Message     string          `json:"message"`
	Error       json.RawMessage `json:"error"`
	Data        json.RawMessage `json:"data"`
	Pagination  *Pagination     `json:"pagination"`
	UnreadCount *int            `json:"unreadCount"`
	Fraud       json.RawMessage `json:"fraud"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*envelope, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token := tokenFromContext(ctx)
	if token == "" {
		token = c.token
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{op: method + " " + path, err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &transportError{op: method + " " + path, err: err}
	}

	env := &envelope{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || (env.Success != nil && !*env.Success) {
		return nil, newAPIError(resp.StatusCode, env)
	}

	return env, nil
}

// decodeData unmarshals the envelope's data member. A missing or null data
// member yields the zero value.
func decodeData[T any](env *envelope) (T, error) {
	var out T
	if isNull(env.Data) {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("failed to decode response data: %w", err)
	}
	return out, nil
}

func decodePage[T any](env *envelope) (Page[T], error) {
	items, err := decodeData[[]T](env)
	if err != nil {
		return Page[T]{}, err
	}
	page := Page[T]{Items: items}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	return q
}

func setIfNotEmpty(q url.Values, key string, value *string) {
	if value != nil && *value != "" {
		q.Set(key, *value)
	}
}
