package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/roomify-app/roomify/internal/common"
)

func (c *Client) ListKeys(ctx context.Context) ([]KeyView, error) {
	var keys []KeyView
	if _, err := c.do(ctx, http.MethodGet, "/v1/keys", nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// AddKey stores key as the active one for provider and returns the refreshed list.
func (c *Client) AddKey(ctx context.Context, key string, provider common.Provider) ([]KeyView, error) {
	in := map[string]string{"key": key, "key_type": string(provider)}
	var keys []KeyView
	if _, err := c.do(ctx, http.MethodPost, "/v1/keys", in, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (c *Client) RemoveKey(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/v1/keys/"+url.PathEscape(id), nil, nil)
	return err
}

// ActiveKey returns the decrypted active key for provider, or "" when there is none.
func (c *Client) ActiveKey(ctx context.Context, provider common.Provider) (string, error) {
	var out struct {
		Key string `json:"key"`
	}
	_, err := c.do(ctx, http.MethodGet, "/v1/keys/active?key_type="+url.QueryEscape(string(provider)), nil, &out)
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return out.Key, nil
}

// LogUsage records a feature invocation.
func (c *Client) LogUsage(ctx context.Context, feature string, tokens *int) error {
	in := struct {
		FeatureUsed string `json:"feature_used"`
		TokensUsed  *int   `json:"tokens_used,omitempty"`
	}{FeatureUsed: feature, TokensUsed: tokens}
	_, err := c.do(ctx, http.MethodPost, "/v1/usage", in, nil)
	return err
}

func (c *Client) RecentUsage(ctx context.Context, limit int) ([]UsageEntry, error) {
	path := "/v1/usage"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var logs []UsageEntry
	if _, err := c.do(ctx, http.MethodGet, path, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
