// Package apikeys persists users' encrypted third-party API keys.
package apikeys

import (
	"context"

	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/server/models"
)

type Repository interface {
	// List returns every key of userID, newest first.
	List(ctx context.Context, userID string) ([]models.APIKey, error)

	// Create inserts key and fills ID and timestamps.
	Create(ctx context.Context, key *models.APIKey) (*models.APIKey, error)

	// DeactivateActive clears the active flag on userID's keys for provider.
	DeactivateActive(ctx context.Context, userID string, provider common.Provider) error

	// Delete removes keyID only if it belongs to userID. A miss is not an error.
	Delete(ctx context.Context, keyID, userID string) error

	// FindActive returns the active key for provider or common.ErrorNotFound.
	FindActive(ctx context.Context, userID string, provider common.Provider) (*models.APIKey, error)
}
