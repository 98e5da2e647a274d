package usagelogs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roomify-app/roomify/internal/dbx"
	"github.com/roomify-app/roomify/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.UsageLog) error {
	query := `
		INSERT INTO usage_logs (user_id, feature_used, tokens_used)
		VALUES ($1, $2, $3)
	`
	var tokens sql.NullInt64
	if entry.TokensUsed != nil {
		tokens = sql.NullInt64{Int64: int64(*entry.TokensUsed), Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query, entry.UserID, entry.FeatureUsed, tokens); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.UsageLog, error) {
	query := `
		SELECT id, user_id, feature_used, tokens_used, created_at
		FROM usage_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	logs := make([]models.UsageLog, 0)
	for rows.Next() {
		var (
			l      models.UsageLog
			tokens sql.NullInt64
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.FeatureUsed, &tokens, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if tokens.Valid {
			n := int(tokens.Int64)
			l.TokensUsed = &n
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return logs, nil
}
