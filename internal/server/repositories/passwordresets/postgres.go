package passwordresets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/dbx"
	"github.com/roomify-app/roomify/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID, tokenHash string, validity time.Duration) error {
	query := `
		INSERT INTO password_resets (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, tokenHash, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	query := `
		SELECT id, user_id, expires_at, used_at
		FROM password_resets
		WHERE token_hash = $1
	`
	pr := &models.PasswordReset{TokenHash: tokenHash}
	var usedAt sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(&pr.ID, &pr.UserID, &pr.Expires, &usedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if usedAt.Valid {
		pr.UsedAt = &usedAt.Time
	}
	return pr, nil
}

// MarkUsed stamps the request as consumed. Already-used requests yield
// common.ErrRecoveryTokenUsed.
func (r *PostgresRepository) MarkUsed(ctx context.Context, id string) error {
	query := `
		UPDATE password_resets SET used_at = now()
		WHERE id = $1 AND used_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrRecoveryTokenUsed
	}
	return nil
}
