package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/roomify-app/roomify/internal/logging"
	"github.com/roomify-app/roomify/internal/server/models"
	"github.com/roomify-app/roomify/internal/server/repositories/repomanager"
)

// DefaultUsageListLimit caps Recent when the caller asks for nothing specific.
const DefaultUsageListLimit = 50

// UsageService records feature usage.
type UsageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewUsageService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *UsageService {
	return &UsageService{db: db, repomanager: m, logger: logger.With("module", "usage")}
}

// LogUsage appends a usage record. It is best effort: failures are logged
// and never reach the caller.
func (s *UsageService) LogUsage(ctx context.Context, userID, feature string, tokens *int) {
	feature = strings.TrimSpace(feature)
	if feature == "" {
		s.logger.Warn(ctx, "usage without feature name dropped", "user_id", userID)
		return
	}
	err := s.repomanager.UsageLogs(s.db).Create(ctx, &models.UsageLog{
		UserID:      userID,
		FeatureUsed: feature,
		TokensUsed:  tokens,
	})
	if err != nil {
		s.logger.Error(ctx, "error logging usage", "user_id", userID, "feature", feature, "error", err)
	}
}

// Recent returns the user's latest usage records, newest first.
func (s *UsageService) Recent(ctx context.Context, userID string, limit int) ([]models.UsageLog, error) {
	if limit <= 0 || limit > DefaultUsageListLimit {
		limit = DefaultUsageListLimit
	}
	return s.repomanager.UsageLogs(s.db).ListByUser(ctx, userID, limit)
}
