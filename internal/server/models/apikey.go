package models

import (
	"time"

	"github.com/roomify-app/roomify/internal/common"
)

// APIKey is a row of user_api_keys. EncryptedKey never leaves the service layer.
type APIKey struct {
	ID           string
	UserID       string
	EncryptedKey string
	Provider     common.Provider
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// KeyView is what list responses expose.
type KeyView struct {
	ID        string          `json:"id"`
	Provider  common.Provider `json:"key_type"`
	MaskedKey string          `json:"masked_key"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// View strips the secret.
func (k *APIKey) View() KeyView {
	return KeyView{
		ID:        k.ID,
		Provider:  k.Provider,
		MaskedKey: common.MaskedKey(k.Provider),
		IsActive:  k.IsActive,
		CreatedAt: k.CreatedAt,
		UpdatedAt: k.UpdatedAt,
	}
}

// UsageLog is an append-only record of a feature invocation.
type UsageLog struct {
	ID          string
	UserID      string
	FeatureUsed string
	TokensUsed  *int
	CreatedAt   time.Time
}
