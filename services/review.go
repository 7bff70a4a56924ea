package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"kyc-hub/models"
)

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ReviewService is the admin approval queue
type ReviewService struct {
	records RecordStore
	alerts  AlertStore
	audit   *AuditService
	log     *zap.Logger
	clock   func() time.Time
}

func NewReviewService(records RecordStore, alerts AlertStore, audit *AuditService, log *zap.Logger) *ReviewService {
	return &ReviewService{records: records, alerts: alerts, audit: audit, log: log, clock: time.Now}
}

// Queue returns pending records, newest first
func (s *ReviewService) Queue(ctx context.Context, limit int64) ([]models.Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.records.List(ctx, RecordFilter{Status: models.StatusPending, Limit: limit})
}

// Decide approves or rejects a pending record and copies it to the permanent archive.
// Approval resolves the record's alerts; rejection leaves them active.
func (s *ReviewService) Decide(ctx context.Context, recordID, adminID primitive.ObjectID, decision, comment, ip string) (*models.Record, error) {
	var status string
	switch strings.ToLower(strings.TrimSpace(decision)) {
	case DecisionApprove, models.StatusApproved:
		status = models.StatusApproved
	case DecisionReject, models.StatusRejected:
		status = models.StatusRejected
	default:
		return nil, fmt.Errorf("%w: decision must be approve or reject", ErrInvalidInput)
	}

	rec, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyDecided, rec.Status)
	}

	now := s.clock().UTC()
	comment = strings.TrimSpace(comment)
	if err := s.records.Decide(ctx, recordID, RecordDecision{
		Status:     status,
		Comment:    comment,
		ReviewedBy: adminID,
		ReviewedAt: now,
	}); err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			s.log.Warn("concurrent decision lost", zap.String("record_id", recordID.Hex()), zap.String("decision", status))
		}
		return nil, err
	}
	rec.Status = status
	rec.AdminComment = comment
	rec.ReviewedBy = &adminID
	rec.ReviewedAt = &now
	rec.UpdatedAt = now

	if err := s.records.Archive(ctx, rec); err != nil {
		s.log.Error("failed to archive record", zap.String("record_id", recordID.Hex()), zap.Error(err))
	}
	if status == models.StatusApproved {
		n, err := s.alerts.SetStatusForRecord(ctx, recordID, models.AlertResolved)
		if err != nil {
			s.log.Error("failed to resolve record alerts", zap.String("record_id", recordID.Hex()), zap.Error(err))
		} else if n > 0 {
			s.log.Info("record alerts resolved", zap.String("record_id", recordID.Hex()), zap.Int64("alerts", n))
		}
	}

	action := models.ActionRecordApprove
	if status == models.StatusRejected {
		action = models.ActionRecordReject
	}
	s.audit.Record(ctx, adminID.Hex(), action, map[string]interface{}{
		"record_id": recordID.Hex(),
		"owner":     rec.UserID.Hex(),
		"comment":   comment,
	}, ip)
	return rec, nil
}
