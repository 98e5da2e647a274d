package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CheckoutRequest describes a hosted checkout session to create.
type CheckoutRequest struct {
	PriceID       string
	Mode          Mode
	SuccessURL    string
	CancelURL     string
	UserID        string
	CustomerEmail string
}

// Checkout creates hosted checkout sessions and returns the redirect URL.
type Checkout interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (string, error)
}

// StripeCheckout talks to the Stripe checkout sessions endpoint.
type StripeCheckout struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewStripeCheckout(baseURL, secretKey string) *StripeCheckout {
	return &StripeCheckout{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CheckoutError is a non-2xx reply from the payments backend.
type CheckoutError struct {
	StatusCode int
	Message    string
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout error %d: %s", e.StatusCode, e.Message)
}

func (s *StripeCheckout) CreateSession(ctx context.Context, req CheckoutRequest) (string, error) {
	form := url.Values{}
	form.Set("mode", string(req.Mode))
	form.Set("line_items[0][price]", req.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	if req.UserID != "" {
		form.Set("client_reference_id", req.UserID)
		form.Set("metadata[user_id]", req.UserID)
	}
	if req.CustomerEmail != "" {
		form.Set("customer_email", req.CustomerEmail)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("checkout request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("checkout response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
			msg = e.Error.Message
		}
		return "", &CheckoutError{StatusCode: resp.StatusCode, Message: msg}
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("checkout response: %w", err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("checkout response: session %q has no url", session.ID)
	}
	return session.URL, nil
}
