package services

import (
	"context"

	"github.com/roomify-app/roomify/internal/logging"
)

// Mailer delivers password recovery tokens.
type Mailer interface {
	SendRecovery(ctx context.Context, email, token string) error
}

// LogMailer writes recovery tokens to the log instead of sending mail.
// Development only.
type LogMailer struct {
	Logger logging.Logger
}

func (m LogMailer) SendRecovery(ctx context.Context, email, token string) error {
	m.Logger.Info(ctx, "password recovery requested", "email", email, "recovery_token", token)
	return nil
}
