// Package usagelogs appends feature usage records.
package usagelogs

import (
	"context"

	"github.com/roomify-app/roomify/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.UsageLog) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.UsageLog, error)
}
