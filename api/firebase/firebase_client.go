// Package firebase stores documents in a Firebase Realtime Database over its
// REST API.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"occupancy-forecaster/api"
)

// Client implements dao.Store against {databaseURL}/{root}/{path}.json.
type Client struct {
	http    *api.HTTPClient
	root    string
	source  TokenSource
	limiter *rate.Limiter
	now     func() time.Time
	logger  zerolog.Logger

	mu         sync.RWMutex
	credential Credential
}

// NewClient creates a database client; requestsPerSecond <= 0 disables throttling.
func NewClient(databaseURL, root string, source TokenSource, requestsPerSecond float64, logger zerolog.Logger) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		http:    api.NewHTTPClient(strings.TrimRight(databaseURL, "/")),
		root:    strings.Trim(root, "/"),
		source:  source,
		limiter: rate.NewLimiter(limit, 4),
		now:     time.Now,
		logger:  logger.With().Str("component", "FirebaseClient").Logger(),
	}
}

// Authenticate renews the access token when it is missing or about to expire.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	renewed, err := Refresh(ctx, c.credential, now, c.source)
	if err != nil {
		return fmt.Errorf("firebase authentication failed: %w", err)
	}
	if renewed != c.credential {
		c.logger.Debug().Time("expires_at", renewed.ExpiresAt).Msg("access token renewed")
	}
	c.credential = renewed
	return nil
}

// Credential returns the current credential.
func (c *Client) Credential() Credential {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.credential
}

func (c *Client) endpoint(path string) (string, error) {
	token := c.Credential().Token
	if token == "" {
		return "", ErrNoCredential
	}
	full := strings.Trim(path, "/")
	if c.root != "" {
		full = c.root + "/" + full
	}
	return "/" + full + ".json?access_token=" + url.QueryEscape(token), nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	endpoint, err := c.endpoint(path)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var headers map[string]string
	var reader io.Reader
	if body != nil {
		headers = map[string]string{"Content-Type": "application/json"}
		reader = bytes.NewReader(body)
	}
	res, err := c.http.RequestRaw(ctx, method, endpoint, headers, reader)
	if err != nil {
		return nil, fmt.Errorf("firebase %s %s: %w", method, path, err)
	}
	return res, nil
}

// Get returns ok=false when the database holds null at path.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, bool, error) {
	res, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, false, err
	}
	trimmed := bytes.TrimSpace(res)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false, nil
	}
	return json.RawMessage(trimmed), true, nil
}

// Set replaces the document at path.
func (c *Client) Set(ctx context.Context, path string, doc json.RawMessage) error {
	_, err := c.do(ctx, "PUT", path, doc)
	return err
}

// Update merges patch into the document at path.
func (c *Client) Update(ctx context.Context, path string, patch json.RawMessage) error {
	_, err := c.do(ctx, "PATCH", path, patch)
	return err
}
