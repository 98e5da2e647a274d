package api

import (
	"context"
	"net/http"
)

// Products lists the plan catalog. No session is required.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if _, err := c.send(ctx, http.MethodGet, "/v1/billing/products", nil, &products, ""); err != nil {
		return nil, err
	}
	return products, nil
}

// Checkout creates a hosted checkout session and returns its URL.
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/v1/billing/checkout", req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Subscription returns the caller's subscription, or nil when there is none.
func (c *Client) Subscription(ctx context.Context) (*Subscription, error) {
	var sub Subscription
	status, err := c.do(ctx, http.MethodGet, "/v1/billing/subscription", nil, &sub)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return &sub, nil
}

// ActivePlan returns the product the caller is currently entitled to.
func (c *Client) ActivePlan(ctx context.Context) (*Product, error) {
	var p Product
	if _, err := c.do(ctx, http.MethodGet, "/v1/billing/plan", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
