// Package passwordresets stores pending password recovery requests.
package passwordresets

import (
	"context"
	"time"

	"github.com/roomify-app/roomify/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, tokenHash string, validity time.Duration) error
	FindByHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error)
	MarkUsed(ctx context.Context, id string) error
}
