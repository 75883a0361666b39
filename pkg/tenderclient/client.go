// Package tenderclient is a Go client for the tender management REST API.
//
// The client keeps the session cookie in a cookie jar and caches GET responses
// in memory by resource path. A successful mutation drops the cached entries
// under the resource it touched; login and logout drop everything. Failed
// requests never change the cache.
package tenderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

const (
	tendersPath = "/tenders"
	usersPath   = "/admin/users"
)

// ErrSubmissionBeforeBriefing is returned before any request is sent when a
// tender's submission date is not after its briefing date.
var ErrSubmissionBeforeBriefing = errors.New("submission date must be after briefing date")

// FieldError is one entry of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int          `json:"-"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("tenderclient: %d %s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("tenderclient: %d %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// Client talks to one API base URL, e.g. http://localhost:5000/api.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	cache map[string][]byte
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is added
// when the client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		cache:   make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("tenderclient: cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// get serves path from the cache or fetches and caches it.
func (c *Client) get(ctx context.Context, path string, out any) error {
	c.mu.RLock()
	body, ok := c.cache[path]
	c.mu.RUnlock()

	if !ok {
		var err error
		body, err = c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.cache[path] = body
		c.mu.Unlock()
	}
	return decode(body, out)
}

// mutate sends a write request and, on success, invalidates every cached path
// under prefix. An empty prefix clears the whole cache.
func (c *Client) mutate(ctx context.Context, method, path, prefix string, in, out any) error {
	body, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	c.invalidate(prefix)
	if out == nil {
		return nil
	}
	return decode(body, out)
}

func (c *Client) invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prefix == "" {
		clear(c.cache)
		return
	}
	for key := range c.cache {
		if key == prefix || strings.HasPrefix(key, prefix+"/") || strings.HasPrefix(key, prefix+"?") {
			delete(c.cache, key)
		}
	}
}

// Cached reports whether path currently has a cached response.
func (c *Client) Cached(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.cache[path]
	return ok
}

func (c *Client) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("tenderclient: encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("tenderclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tenderclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tenderclient: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{}
		if jerr := json.Unmarshal(body, apiErr); jerr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		apiErr.Status = resp.StatusCode
		return nil, apiErr
	}
	return body, nil
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("tenderclient: decode response: %w", err)
	}
	return nil
}
