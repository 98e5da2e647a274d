package models

import "time"

// Subscription mirrors stripe_user_subscriptions, which the billing webhook
// keeps up to date. The API only reads it.
type Subscription struct {
	UserID             string     `json:"-"`
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
