// Package subscriptions reads the billing subscription projection.
package subscriptions

import (
	"context"

	"github.com/roomify-app/roomify/internal/server/models"
)

type Repository interface {
	// FindByUser returns the user's subscription row or common.ErrorNotFound.
	FindByUser(ctx context.Context, userID string) (*models.Subscription, error)

	// Upsert writes the projection; it is driven by billing events.
	Upsert(ctx context.Context, s *models.Subscription) error
}
