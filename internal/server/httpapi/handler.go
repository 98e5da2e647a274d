// Package httpapi is the JSON HTTP surface of the server: authentication,
// API key storage, usage logging, billing and the session event stream.
package httpapi

import (
	"context"

	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/logging"
	"github.com/roomify-app/roomify/internal/server/billing"
	"github.com/roomify-app/roomify/internal/server/events"
	"github.com/roomify-app/roomify/internal/server/models"
	"github.com/roomify-app/roomify/internal/server/services"
)

// UserService is the subset of services.UserService the handlers use.
type UserService interface {
	SignUp(ctx context.Context, email, password string) (*services.TokenPair, error)
	SignIn(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	SignOut(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	RequestRecovery(ctx context.Context, email string) error
	ConfirmRecovery(ctx context.Context, token, newPassword string) (*services.TokenPair, error)
}

type KeyService interface {
	List(ctx context.Context, userID string) ([]models.KeyView, error)
	Add(ctx context.Context, userID, plaintext string, provider common.Provider) error
	Remove(ctx context.Context, userID, keyID string) error
	Active(ctx context.Context, userID string, provider common.Provider) (string, error)
}

type UsageService interface {
	LogUsage(ctx context.Context, userID, feature string, tokens *int)
	Recent(ctx context.Context, userID string, limit int) ([]models.UsageLog, error)
}

type BillingService interface {
	Products() []billing.Product
	Checkout(ctx context.Context, req billing.CheckoutRequest) (string, error)
	Subscription(ctx context.Context, userID string) (*models.Subscription, error)
	ActivePlan(ctx context.Context, userID string) (billing.Product, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	users     UserService
	keys      KeyService
	usage     UsageService
	billing   BillingService
	broker    events.Broker
	logger    logging.Logger
	jwtSecret []byte
}

// NewHandler creates a new HTTP handler.
func NewHandler(us UserService, ks KeyService, uss UsageService, bs BillingService, broker events.Broker, logger logging.Logger, secretKey string) *Handler {
	return &Handler{
		users:     us,
		keys:      ks,
		usage:     uss,
		billing:   bs,
		broker:    broker,
		logger:    logger.With("module", "http_api"),
		jwtSecret: []byte(secretKey),
	}
}
