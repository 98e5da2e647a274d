package api

import (
	"time"

	"github.com/roomify-app/roomify/internal/common"
)

// TokenPair is an authenticated session as issued by the server.
type TokenPair struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// KeyView is a stored API key as listed by the server. The secret is never included.
type KeyView struct {
	ID        string          `json:"id"`
	Provider  common.Provider `json:"key_type"`
	MaskedKey string          `json:"masked_key"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type UsageEntry struct {
	FeatureUsed string    `json:"feature_used"`
	TokensUsed  *int      `json:"tokens_used,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID          string  `json:"id"`
	PriceID     string  `json:"price_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Mode        string  `json:"mode"`
	Price       float64 `json:"price"`
}

type CheckoutRequest struct {
	PriceID    string `json:"price_id"`
	Mode       string `json:"mode,omitempty"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type Subscription struct {
	CustomerID         string     `json:"customer_id"`
	SubscriptionID     *string    `json:"subscription_id,omitempty"`
	Status             string     `json:"subscription_status"`
	PriceID            *string    `json:"price_id,omitempty"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	PaymentMethodBrand *string    `json:"payment_method_brand,omitempty"`
	PaymentMethodLast4 *string    `json:"payment_method_last4,omitempty"`
}

// Event is a session event pushed by the server.
type Event struct {
	Type   string    `json:"event"`
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}
