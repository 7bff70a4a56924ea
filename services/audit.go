package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kyc-hub/models"
)

type AuditService struct {
	store AuditStore
	log   *zap.Logger
	clock func() time.Time
}

func NewAuditService(store AuditStore, log *zap.Logger) *AuditService {
	return &AuditService{store: store, log: log, clock: time.Now}
}

// Record writes an audit entry. Failures are logged and never reach the caller.
func (s *AuditService) Record(ctx context.Context, userID, action string, details map[string]interface{}, ip string) {
	entry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: ip,
		Timestamp: s.clock().UTC(),
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		s.log.Error("failed to write audit log",
			zap.String("action", action),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

// Trail returns one page of the audit log, newest first
func (s *AuditService) Trail(ctx context.Context, page, limit int) ([]models.AuditLog, int64, error) {
	page, limit = normalizePage(page, limit, 20, 100)
	return s.store.List(ctx, page, limit)
}

func normalizePage(page, limit, def, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
