package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/logging"
	"github.com/roomify-app/roomify/internal/server/billing"
	"github.com/roomify-app/roomify/internal/server/models"
	"github.com/roomify-app/roomify/internal/server/repositories/repomanager"
)

// BillingService exposes the product catalog, creates checkout sessions and
// reads the subscription projection.
type BillingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	catalog     *billing.Catalog
	checkout    billing.Checkout
	logger      logging.Logger
}

func NewBillingService(db *sql.DB, m repomanager.RepositoryManager, catalog *billing.Catalog, checkout billing.Checkout, logger logging.Logger) *BillingService {
	return &BillingService{db: db, repomanager: m, catalog: catalog, checkout: checkout, logger: logger.With("module", "billing")}
}

// Products lists the catalog in display order.
func (s *BillingService) Products() []billing.Product {
	return s.catalog.Products()
}

// Checkout creates a hosted checkout session for a catalog price and returns
// its URL. An empty mode defaults to the product's mode.
func (s *BillingService) Checkout(ctx context.Context, req billing.CheckoutRequest) (string, error) {
	product, ok := s.catalog.ProductByPriceID(req.PriceID)
	if !ok {
		return "", common.ErrUnknownPrice
	}
	if req.Mode == "" {
		req.Mode = product.Mode
	}
	if req.Mode != product.Mode {
		return "", fmt.Errorf("%w: mode %q does not match %s", common.ErrorValidation, req.Mode, product.Name)
	}
	if req.SuccessURL == "" || req.CancelURL == "" {
		return "", fmt.Errorf("%w: success_url and cancel_url are required", common.ErrorValidation)
	}

	if req.CustomerEmail == "" && req.UserID != "" {
		if u, err := s.repomanager.Users(s.db).GetUserByID(ctx, req.UserID); err == nil {
			req.CustomerEmail = u.Email
		}
	}

	url, err := s.checkout.CreateSession(ctx, req)
	if err != nil {
		s.logger.Error(ctx, "checkout session failed", "user_id", req.UserID, "price_id", req.PriceID, "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrCheckoutFailed, err)
	}
	return url, nil
}

// Subscription returns the user's subscription projection or common.ErrorNotFound.
func (s *BillingService) Subscription(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.repomanager.Subscriptions(s.db).FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading subscription: %w", err)
	}
	return sub, nil
}

// ActivePlan resolves the user's subscription to a catalog product. Users
// without a live subscription or with an unknown price are on the free plan.
func (s *BillingService) ActivePlan(ctx context.Context, userID string) (billing.Product, error) {
	free, _ := s.catalog.FreePlan()

	sub, err := s.Subscription(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return free, nil
		}
		return billing.Product{}, err
	}
	if sub.PriceID == nil || (sub.Status != "active" && sub.Status != "trialing") {
		return free, nil
	}
	if p, ok := s.catalog.ProductByPriceID(*sub.PriceID); ok {
		return p, nil
	}
	return free, nil
}
