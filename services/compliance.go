package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kyc-hub/models"
)

// ComplianceRules holds the thresholds of the rules engine
type ComplianceRules struct {
	SharedAddressUsers  int
	HighRiskRecordCount int
	HighRiskFraudScore  float64
}

// ComplianceEngine raises alerts for a new submission. The Aadhaar
// blacklist is cached in memory and refreshed from the store.
type ComplianceEngine struct {
	records   RecordStore
	blacklist BlacklistStore
	rules     ComplianceRules
	log       *zap.Logger
	clock     func() time.Time

	mu          sync.RWMutex
	blacklisted map[string]bool
}

func NewComplianceEngine(records RecordStore, blacklist BlacklistStore, rules ComplianceRules, log *zap.Logger) *ComplianceEngine {
	if rules.SharedAddressUsers <= 0 {
		rules.SharedAddressUsers = 3
	}
	if rules.HighRiskRecordCount <= 0 {
		rules.HighRiskRecordCount = 2
	}
	if rules.HighRiskFraudScore <= 0 {
		rules.HighRiskFraudScore = HighRiskThreshold
	}
	return &ComplianceEngine{
		records:     records,
		blacklist:   blacklist,
		rules:       rules,
		log:         log,
		clock:       time.Now,
		blacklisted: map[string]bool{},
	}
}

// RefreshBlacklist reloads the blacklisted Aadhaar numbers
func (e *ComplianceEngine) RefreshBlacklist(ctx context.Context) error {
	entries, err := e.blacklist.List(ctx)
	if err != nil {
		return fmt.Errorf("load blacklist: %w", err)
	}
	set := make(map[string]bool, len(entries))
	for _, entry := range entries {
		set[entry.AadhaarNumber] = true
	}

	e.mu.Lock()
	e.blacklisted = set
	e.mu.Unlock()

	e.log.Debug("blacklist refreshed", zap.Int("entries", len(set)))
	return nil
}

func (e *ComplianceEngine) IsBlacklisted(number string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.blacklisted[number]
}

// Evaluate runs every rule against rec, which must already carry its ID.
// A failing lookup skips its rule rather than the whole evaluation.
func (e *ComplianceEngine) Evaluate(ctx context.Context, rec *models.Record, patterns []string) []models.Alert {
	var alerts []models.Alert
	add := func(alertType, severity, message string, confidence float64, meta map[string]interface{}) {
		alerts = append(alerts, models.Alert{
			AlertID:         uuid.NewString(),
			RecordID:        rec.ID,
			UserID:          rec.UserID,
			AlertType:       alertType,
			Severity:        severity,
			Message:         message,
			ConfidenceScore: confidence,
			Metadata:        meta,
			Status:          models.AlertActive,
			CreatedAt:       e.clock(),
		})
	}

	number := rec.DocumentNumber()
	if number != "" {
		dups, err := e.records.FindByDocumentNumber(ctx, rec.DocumentType, number, rec.UserID)
		if err != nil {
			e.log.Warn("duplicate number rule skipped", zap.Error(err))
		} else if len(dups) > 0 {
			users := map[string]bool{}
			ids := make([]string, 0, len(dups))
			for _, d := range dups {
				users[d.UserID.Hex()] = true
				ids = append(ids, d.ID.Hex())
			}
			add(models.AlertDuplicateDocument, models.SeverityHigh,
				fmt.Sprintf("%s number already used by %d other account(s)", docLabel(rec.DocumentType), len(users)),
				95, map[string]interface{}{"record_ids": ids, "other_users": len(users)})
		}
	}

	if rec.Quality.IssuesDetected {
		add(models.AlertPoorImageQuality, models.SeverityMedium,
			"Document image quality is too poor for reliable verification: "+strings.Join(rec.Quality.Issues, ", "),
			rec.Quality.Score, map[string]interface{}{"issues": rec.Quality.Issues})
	}

	if addr := rec.Address(); addr != "" {
		n, err := e.records.CountUsersWithAddress(ctx, addr, rec.UserID)
		if err != nil {
			e.log.Warn("shared address rule skipped", zap.Error(err))
		} else if n >= e.rules.SharedAddressUsers {
			add(models.AlertSharedAddress, models.SeverityMedium,
				fmt.Sprintf("Address is shared by %d other accounts", n),
				80, map[string]interface{}{"address": addr, "other_users": n})
		}
	}

	userID := rec.UserID
	flagged, err := e.records.Count(ctx, RecordFilter{UserID: &userID, MinFraud: e.rules.HighRiskFraudScore})
	if err != nil {
		e.log.Warn("high risk user rule skipped", zap.Error(err))
	} else {
		if rec.FraudScore >= e.rules.HighRiskFraudScore {
			flagged++
		}
		if flagged >= int64(e.rules.HighRiskRecordCount) {
			add(models.AlertHighRiskUser, models.SeverityHigh,
				fmt.Sprintf("User has %d high risk submissions", flagged),
				85, map[string]interface{}{"high_risk_records": flagged})
		}
	}

	if rec.DocumentType == models.DocTypeAadhaar && number != "" && e.IsBlacklisted(number) {
		add(models.AlertBlacklisted, models.SeverityCritical,
			"Aadhaar number is blacklisted", 100, nil)
	}

	if len(patterns) > 0 {
		add(models.AlertSuspiciousPattern, models.SeverityMedium,
			"Extracted details look synthetic: "+strings.Join(patterns, ", "),
			70, map[string]interface{}{"patterns": patterns})
	}

	if rec.Behavior.RiskLevel == models.RiskHigh {
		add(models.AlertSuspiciousBehavior, models.SeverityMedium,
			"Submission history shows suspicious behaviour", rec.Behavior.Score,
			map[string]interface{}{"flags": rec.Behavior.Flags})
	}

	return alerts
}

// RecommendStatus maps fraud score and raised alerts to a verification outcome
func RecommendStatus(fraudScore float64, alerts []models.Alert) string {
	critical, high := false, false
	for _, a := range alerts {
		switch a.Severity {
		case models.SeverityCritical:
			critical = true
		case models.SeverityHigh:
			high = true
		}
	}
	switch {
	case critical || fraudScore >= 85:
		return models.RecommendRejected
	case high || fraudScore >= HighRiskThreshold:
		return models.RecommendFlagged
	case fraudScore >= MediumRiskThreshold:
		return models.RecommendPending
	default:
		return models.RecommendVerified
	}
}

func docLabel(docType string) string {
	if docType == models.DocTypePAN {
		return "PAN"
	}
	return "Aadhaar"
}
