package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"kyc-hub/models"
	"kyc-hub/ocr"
)

type ComplianceStats struct {
	TotalUsers        int64            `json:"total_users"`
	TotalRecords      int64            `json:"total_records"`
	TotalAlerts       int64            `json:"total_alerts"`
	ActiveAlerts      int64            `json:"active_alerts"`
	SeverityBreakdown map[string]int64 `json:"severity_breakdown"`
	RecentAlerts24h   int64            `json:"recent_alerts_24h"`
	ComplianceScore   float64          `json:"compliance_score"`
}

// ComplianceService serves the alert dashboard and blacklist administration
type ComplianceService struct {
	engine    *ComplianceEngine
	users     UserStore
	records   RecordStore
	alerts    AlertStore
	blacklist BlacklistStore
	clock     func() time.Time
}

func NewComplianceService(engine *ComplianceEngine, users UserStore, records RecordStore, alerts AlertStore, blacklist BlacklistStore) *ComplianceService {
	return &ComplianceService{
		engine:    engine,
		users:     users,
		records:   records,
		alerts:    alerts,
		blacklist: blacklist,
		clock:     time.Now,
	}
}

func (s *ComplianceService) Stats(ctx context.Context) (*ComplianceStats, error) {
	var (
		st  = &ComplianceStats{}
		err error
	)
	if st.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if st.TotalRecords, err = s.records.Count(ctx, RecordFilter{}); err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	if st.TotalAlerts, err = s.alerts.Count(ctx, AlertFilter{}); err != nil {
		return nil, fmt.Errorf("count alerts: %w", err)
	}
	if st.ActiveAlerts, err = s.alerts.Count(ctx, AlertFilter{Status: models.AlertActive}); err != nil {
		return nil, fmt.Errorf("count active alerts: %w", err)
	}
	if st.RecentAlerts24h, err = s.alerts.Count(ctx, AlertFilter{Since: s.clock().Add(-24 * time.Hour)}); err != nil {
		return nil, fmt.Errorf("count recent alerts: %w", err)
	}
	bySeverity, err := s.alerts.CountBySeverity(ctx)
	if err != nil {
		return nil, fmt.Errorf("count alerts by severity: %w", err)
	}
	st.SeverityBreakdown = map[string]int64{}
	for _, sev := range []string{models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical} {
		st.SeverityBreakdown[sev] = bySeverity[sev]
	}

	records := math.Max(float64(st.TotalRecords), 1)
	st.ComplianceScore = round1(math.Max(0, 100-float64(st.ActiveAlerts)/records*100))
	return st, nil
}

// Alerts lists alerts, active ones by default, optionally narrowed by severity
func (s *ComplianceService) Alerts(ctx context.Context, status, severity string, limit int64) ([]models.Alert, error) {
	if status == "" {
		status = models.AlertActive
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.alerts.List(ctx, AlertFilter{Status: status, Severity: severity, Limit: limit})
}

// UserAlerts lists every alert raised on the user's own records
func (s *ComplianceService) UserAlerts(ctx context.Context, userID primitive.ObjectID) ([]models.Alert, error) {
	return s.alerts.List(ctx, AlertFilter{UserID: &userID, Limit: 100})
}

func (s *ComplianceService) Resolve(ctx context.Context, alertID, resolvedBy primitive.ObjectID, notes string) error {
	return s.alerts.Resolve(ctx, alertID, resolvedBy, strings.TrimSpace(notes), s.clock().UTC())
}

func (s *ComplianceService) Blacklist(ctx context.Context) ([]models.BlacklistEntry, error) {
	return s.blacklist.List(ctx)
}

func (s *ComplianceService) AddToBlacklist(ctx context.Context, number, reason string, addedBy primitive.ObjectID) (*models.BlacklistEntry, error) {
	number = strings.NewReplacer(" ", "", "-", "").Replace(number)
	if !ocr.ValidateAadhaar(number) {
		return nil, fmt.Errorf("%w: aadhaar number must be 12 digits", ErrInvalidInput)
	}
	entry := &models.BlacklistEntry{
		AadhaarNumber: number,
		Reason:        strings.TrimSpace(reason),
		AddedBy:       addedBy,
		CreatedAt:     s.clock().UTC(),
	}
	if err := s.blacklist.Add(ctx, entry); err != nil {
		return nil, err
	}
	return entry, s.engine.RefreshBlacklist(ctx)
}

func (s *ComplianceService) RemoveFromBlacklist(ctx context.Context, number string) error {
	if err := s.blacklist.Remove(ctx, number); err != nil {
		return err
	}
	return s.engine.RefreshBlacklist(ctx)
}
