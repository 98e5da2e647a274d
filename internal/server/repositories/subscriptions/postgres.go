package subscriptions

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

func (r *PostgresRepository) FindByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	query := `
		SELECT customer_id, subscription_id, subscription_status, price_id,
		       current_period_start, current_period_end, cancel_at_period_end,
		       payment_method_brand, payment_method_last4
		FROM stripe_user_subscriptions
		WHERE user_id = $1
	`
	var (
		s                 = &models.Subscription{UserID: userID}
		subID, priceID    sql.NullString
		brand, last4      sql.NullString
		periodStart, pEnd sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.CustomerID, &subID, &s.Status, &priceID,
		&periodStart, &pEnd, &s.CancelAtPeriodEnd,
		&brand, &last4,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	s.SubscriptionID = nullString(subID)
	s.PriceID = nullString(priceID)
	s.PaymentMethodBrand = nullString(brand)
	s.PaymentMethodLast4 = nullString(last4)
	if periodStart.Valid {
		s.CurrentPeriodStart = &periodStart.Time
	}
	if pEnd.Valid {
		s.CurrentPeriodEnd = &pEnd.Time
	}
	return s, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, s *models.Subscription) error {
	query := `
		INSERT INTO stripe_user_subscriptions (
			user_id, customer_id, subscription_id, subscription_status, price_id,
			current_period_start, current_period_end, cancel_at_period_end,
			payment_method_brand, payment_method_last4
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			customer_id = excluded.customer_id,
			subscription_id = excluded.subscription_id,
			subscription_status = excluded.subscription_status,
			price_id = excluded.price_id,
			current_period_start = excluded.current_period_start,
			current_period_end = excluded.current_period_end,
			cancel_at_period_end = excluded.cancel_at_period_end,
			payment_method_brand = excluded.payment_method_brand,
			payment_method_last4 = excluded.payment_method_last4,
			updated_at = now()
	`
	_, err := r.db.ExecContext(ctx, query,
		s.UserID, s.CustomerID, s.SubscriptionID, s.Status, s.PriceID,
		s.CurrentPeriodStart, s.CurrentPeriodEnd, s.CancelAtPeriodEnd,
		s.PaymentMethodBrand, s.PaymentMethodLast4,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
