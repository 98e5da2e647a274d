// Package services contains server-side business logic. This file implements
// UserService, which handles sign-up, sign-in, sign-out, password recovery,
// and issuing/refreshing JWTs plus server-stored refresh tokens.
package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/dbx"
	"github.com/roomify-app/roomify/internal/logging"
	"github.com/roomify-app/roomify/internal/server/auth"
	"github.com/roomify-app/roomify/internal/server/config"
	"github.com/roomify-app/roomify/internal/server/events"
	"github.com/roomify-app/roomify/internal/server/models"
	"github.com/roomify-app/roomify/internal/server/repositories/repomanager"
)

// MinPasswordLength is the shortest password accepted at sign-up and recovery.
const MinPasswordLength = 6

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// UserService provides authentication-related operations:
//   - SignUp / SignIn: create users or verify credentials and mint tokens
//   - RefreshToken: rotate refresh tokens and mint new access tokens
//   - SignOut: revoke every refresh token of a user
//   - RequestRecovery / ConfirmRecovery: reset a forgotten password
//
// Every successful operation publishes a session event for the user.
type UserService struct {
	db                            *sql.DB
	repomanager                   repomanager.RepositoryManager
	broker                        events.Broker
	mailer                        Mailer
	logger                        logging.Logger
	jwtSecret                     []byte
	accessTokenValidityDuration   time.Duration
	refreshTokenValidityDuration  time.Duration
	recoveryTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, broker events.Broker, mailer Mailer, logger logging.Logger) *UserService {
	return &UserService{
		db:                            db,
		repomanager:                   m,
		broker:                        broker,
		mailer:                        mailer,
		logger:                        logger.With("module", "users"),
		jwtSecret:                     []byte(cfg.SecretKey),
		accessTokenValidityDuration:   cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration:  cfg.RefreshTokenValidityDuration,
		recoveryTokenValidityDuration: cfg.RecoveryTokenValidityDuration,
	}
}

// SignUp creates an account and signs it in.
func (s *UserService) SignUp(ctx context.Context, email, password string) (*TokenPair, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, common.ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{Email: email, PasswordHash: hash})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return err
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		pair, err = s.generateTokenPair(ctx, u.ID, tx)
		return err
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, events.SignedIn, pair.UserID)
	return pair, nil
}

// SignIn verifies credentials and returns a new TokenPair.
// Unknown emails and wrong passwords both yield common.ErrorUnauthorized.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.SignedIn, user.ID)
	return pair, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TokenRefreshed, token.UserID)
	return pair, nil
}

// SignOut revokes every refresh token of userID.
func (s *UserService) SignOut(ctx context.Context, userID string) error {
	if err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("error revoking refresh tokens: %w", err)
	}
	s.publish(ctx, events.SignedOut, userID)
	return nil
}

// GetUser returns the account behind userID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetUserByID(ctx, userID)
}

// RequestRecovery mails a recovery token to email. Unknown addresses succeed
// silently so the endpoint does not reveal which accounts exist.
func (s *UserService) RequestRecovery(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "recovery requested for unknown email")
			return nil
		}
		return common.ErrorInternal
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}

	if err := s.repomanager.PasswordResets(s.db).Create(ctx, user.ID, hashToken(token), s.recoveryTokenValidityDuration); err != nil {
		return fmt.Errorf("error storing recovery token: %w", err)
	}
	if err := s.mailer.SendRecovery(ctx, user.Email, token); err != nil {
		return fmt.Errorf("error sending recovery email: %w", err)
	}

	s.publish(ctx, events.PasswordRecovery, user.ID)
	return nil
}

// ConfirmRecovery consumes a recovery token, sets newPassword, revokes existing
// sessions and signs the user in.
func (s *UserService) ConfirmRecovery(ctx context.Context, token, newPassword string) (*TokenPair, error) {
	if len(newPassword) < MinPasswordLength {
		return nil, common.ErrPasswordTooShort
	}

	reset, err := s.repomanager.PasswordResets(s.db).FindByHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}
	if reset.UsedAt != nil {
		return nil, common.ErrRecoveryTokenUsed
	}
	if reset.Expires.Before(time.Now()) {
		return nil, common.ErrTokenExpired
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.PasswordResets(tx).MarkUsed(ctx, reset.ID); err != nil {
			return err
		}
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, reset.UserID, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		if err := s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, reset.UserID); err != nil {
			return fmt.Errorf("error revoking refresh tokens: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, reset.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserUpdated, reset.UserID)
	return pair, nil
}

// --- helpers below ---

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", common.ErrInvalidEmail
	}
	return email, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *UserService) publish(ctx context.Context, t events.Type, userID string) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, events.New(t, userID)); err != nil {
		s.logger.Warn(ctx, "session event not published", "event", string(t), "user_id", userID, "error", err)
	}
}

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	expires := time.Now().Add(s.accessTokenValidityDuration)
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{UserID: userID, AccessToken: access, RefreshToken: refresh, ExpiresAt: expires}, nil
}
