package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/roomify-app/roomify/internal/common"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

type Client struct {
	baseURL string
	http    *http.Client

	mu        sync.RWMutex
	tokens    *TokenPair
	onRefresh func(TokenPair)

	// serialises token rotation
	refreshMu sync.Mutex
}

// NewClient returns a client for the server at baseURL. timeout bounds every
// request except the event stream; zero means no timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetTokens installs a session, or clears it when p is nil.
func (c *Client) SetTokens(p *TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p == nil {
		c.tokens = nil
		return
	}
	cp := *p
	c.tokens = &cp
}

// Tokens returns a copy of the current session, or nil.
func (c *Client) Tokens() *TokenPair {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return nil
	}
	cp := *c.tokens
	return &cp
}

// OnTokensRefreshed registers fn to run after an automatic token rotation.
func (c *Client) OnTokensRefreshed(fn func(TokenPair)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = fn
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken
}

// do sends an authenticated request and replays it once after rotating an
// expired access token.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	access := c.accessToken()
	if access == "" {
		return 0, ErrNotSignedIn
	}

	status, err := c.send(ctx, method, path, in, out, access)
	if err == nil || !isTokenExpired(err) {
		return status, err
	}

	if err := c.rotate(ctx, access); err != nil {
		return 0, err
	}
	return c.send(ctx, method, path, in, out, c.accessToken())
}

// rotate exchanges the refresh token unless another caller already replaced
// the stale access token.
func (c *Client) rotate(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.accessToken() != stale {
		return nil
	}

	pair, err := c.Refresh(ctx)
	if err != nil {
		return err
	}

	c.mu.RLock()
	hook := c.onRefresh
	c.mu.RUnlock()
	if hook != nil {
		hook(*pair)
	}
	return nil
}

// send performs one request. A 204 leaves out untouched.
func (c *Client) send(ctx context.Context, method, path string, in, out any, access string) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

// Health checks GET /v1/health.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.send(ctx, http.MethodGet, "/v1/health", nil, nil, "")
	return err
}
