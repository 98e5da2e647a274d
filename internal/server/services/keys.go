package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/cryptox"
	"github.com/roomify-app/roomify/internal/dbx"
	"github.com/roomify-app/roomify/internal/logging"
	"github.com/roomify-app/roomify/internal/server/models"
	"github.com/roomify-app/roomify/internal/server/repositories/repomanager"
)

// KeyService manages users' third-party API keys. Secrets are encrypted
// before they reach the repository and only decrypted by Active.
type KeyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      cryptox.Cipher
	logger      logging.Logger
}

func NewKeyService(db *sql.DB, m repomanager.RepositoryManager, cipher cryptox.Cipher, logger logging.Logger) *KeyService {
	return &KeyService{db: db, repomanager: m, cipher: cipher, logger: logger.With("module", "keys")}
}

// List returns the user's keys newest first, masked.
func (s *KeyService) List(ctx context.Context, userID string) ([]models.KeyView, error) {
	keys, err := s.repomanager.APIKeys(s.db).List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing api keys: %w", err)
	}
	views := make([]models.KeyView, 0, len(keys))
	for i := range keys {
		views = append(views, keys[i].View())
	}
	return views, nil
}

// Add stores plaintext as the user's active key for provider, deactivating
// any previous active key for the same provider in the same transaction.
func (s *KeyService) Add(ctx context.Context, userID, plaintext string, provider common.Provider) error {
	if !cryptox.ValidateFormat(plaintext, provider) {
		return common.ErrInvalidKeyFormat
	}

	encrypted, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("error encrypting api key: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.APIKeys(tx)
		if err := repo.DeactivateActive(ctx, userID, provider); err != nil {
			return fmt.Errorf("error deactivating api keys: %w", err)
		}
		if _, err := repo.Create(ctx, &models.APIKey{
			UserID:       userID,
			EncryptedKey: encrypted,
			Provider:     provider,
			IsActive:     true,
		}); err != nil {
			return fmt.Errorf("error storing api key: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "api key added", "user_id", userID, "provider", string(provider))
	return nil
}

// Remove deletes keyID if userID owns it. Foreign or unknown ids are a no-op.
func (s *KeyService) Remove(ctx context.Context, userID, keyID string) error {
	// ids are uuid columns, anything else cannot name a stored key
	if _, err := uuid.Parse(keyID); err != nil {
		return nil
	}
	if err := s.repomanager.APIKeys(s.db).Delete(ctx, keyID, userID); err != nil {
		return fmt.Errorf("error removing api key: %w", err)
	}
	return nil
}

// Active returns the decrypted active key for provider, or common.ErrorNotFound.
func (s *KeyService) Active(ctx context.Context, userID string, provider common.Provider) (string, error) {
	key, err := s.repomanager.APIKeys(s.db).FindActive(ctx, userID, provider)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("error loading active api key: %w", err)
	}

	plaintext, err := s.cipher.Decrypt(key.EncryptedKey)
	if err != nil {
		s.logger.Error(ctx, "active api key cannot be decrypted", "user_id", userID, "key_id", key.ID, "error", err)
		return "", fmt.Errorf("error decrypting api key: %w", err)
	}
	return plaintext, nil
}
