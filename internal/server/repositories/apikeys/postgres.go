package apikeys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.APIKey, error) {
	query := `
		SELECT id, user_id, encrypted_api_key, key_type, is_active, created_at, updated_at
		FROM user_api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	keys := make([]models.APIKey, 0)
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.EncryptedKey, &k.Provider, &k.IsActive, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return keys, nil
}

func (r *PostgresRepository) Create(ctx context.Context, key *models.APIKey) (*models.APIKey, error) {
	query := `
		INSERT INTO user_api_keys (user_id, encrypted_api_key, key_type, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, key.UserID, key.EncryptedKey, key.Provider, key.IsActive).
		Scan(&key.ID, &key.CreatedAt, &key.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return key, nil
}

func (r *PostgresRepository) DeactivateActive(ctx context.Context, userID string, provider common.Provider) error {
	query := `
		UPDATE user_api_keys SET is_active = false, updated_at = now()
		WHERE user_id = $1 AND key_type = $2 AND is_active
	`
	if _, err := r.db.ExecContext(ctx, query, userID, provider); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, keyID, userID string) error {
	query := `
		DELETE FROM user_api_keys
		WHERE id = $1 AND user_id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, keyID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, userID string, provider common.Provider) (*models.APIKey, error) {
	query := `
		SELECT id, user_id, encrypted_api_key, key_type, is_active, created_at, updated_at
		FROM user_api_keys
		WHERE user_id = $1 AND key_type = $2 AND is_active
	`
	var k models.APIKey
	err := r.db.QueryRowContext(ctx, query, userID, provider).
		Scan(&k.ID, &k.UserID, &k.EncryptedKey, &k.Provider, &k.IsActive, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &k, nil
}
