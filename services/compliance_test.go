package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"kyc-hub/imaging"
	"kyc-hub/models"
	"kyc-hub/services"
	"kyc-hub/services/storetest"
)

const (
	sharedNumber  = "234567890124"
	sharedAddress = "12 MG Road Bengaluru 560001"
)

func alertTypes(alerts []models.Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.AlertType)
	}
	return out
}

func TestComplianceEngineRaisesEveryRule(t *testing.T) {
	ctx := context.Background()
	user := primitive.NewObjectID()

	var seeded []models.Record
	for i := 0; i < 3; i++ {
		seeded = append(seeded, models.Record{
			UserID:          primitive.NewObjectID(),
			DocumentType:    models.DocTypeAadhaar,
			ExtractedFields: map[string]string{"aadhaar_number": sharedNumber, "address": sharedAddress},
		})
	}
	seeded = append(seeded, models.Record{UserID: user, DocumentType: models.DocTypePAN, FraudScore: 80})
	records := storetest.NewRecords(seeded...)

	engine := services.NewComplianceEngine(records, storetest.NewBlacklist(sharedNumber), services.ComplianceRules{}, zap.NewNop())
	require.NoError(t, engine.RefreshBlacklist(ctx))

	rec := &models.Record{
		ID:              primitive.NewObjectID(),
		UserID:          user,
		DocumentType:    models.DocTypeAadhaar,
		ExtractedFields: map[string]string{"aadhaar_number": sharedNumber, "address": sharedAddress},
		FraudScore:      75,
		Quality:         imaging.Quality{Score: 60, IssuesDetected: true, Issues: []string{imaging.IssueBlurry}},
		Behavior:        models.BehaviorAnalysis{Score: 55, RiskLevel: models.RiskHigh},
	}

	alerts := engine.Evaluate(ctx, rec, []string{"suspicious_name"})
	assert.ElementsMatch(t, []string{
		models.AlertDuplicateDocument,
		models.AlertPoorImageQuality,
		models.AlertSharedAddress,
		models.AlertHighRiskUser,
		models.AlertBlacklisted,
		models.AlertSuspiciousPattern,
		models.AlertSuspiciousBehavior,
	}, alertTypes(alerts))

	for _, a := range alerts {
		assert.Equal(t, rec.ID, a.RecordID)
		assert.Equal(t, user, a.UserID)
		assert.Equal(t, models.AlertActive, a.Status)
		assert.NotEmpty(t, a.AlertID)
		if a.AlertType == models.AlertBlacklisted {
			assert.Equal(t, models.SeverityCritical, a.Severity)
			assert.Equal(t, 100.0, a.ConfidenceScore)
		}
	}
	assert.Equal(t, models.RecommendRejected, services.RecommendStatus(rec.FraudScore, alerts))
}

func TestComplianceEngineCleanRecord(t *testing.T) {
	engine := services.NewComplianceEngine(storetest.NewRecords(), storetest.NewBlacklist(), services.ComplianceRules{}, zap.NewNop())

	rec := &models.Record{
		ID:              primitive.NewObjectID(),
		UserID:          primitive.NewObjectID(),
		DocumentType:    models.DocTypeAadhaar,
		ExtractedFields: map[string]string{"aadhaar_number": sharedNumber, "address": sharedAddress},
		FraudScore:      10,
	}
	assert.Empty(t, engine.Evaluate(context.Background(), rec, nil))
}

func TestComplianceEngineIgnoresOwnRecords(t *testing.T) {
	user := primitive.NewObjectID()
	records := storetest.NewRecords(models.Record{
		UserID:          user,
		DocumentType:    models.DocTypePAN,
		ExtractedFields: map[string]string{"pan_number": "ABCPK1234F"},
	})
	engine := services.NewComplianceEngine(records, storetest.NewBlacklist(), services.ComplianceRules{}, zap.NewNop())

	rec := &models.Record{
		ID:              primitive.NewObjectID(),
		UserID:          user,
		DocumentType:    models.DocTypePAN,
		ExtractedFields: map[string]string{"pan_number": "ABCPK1234F"},
	}
	assert.Empty(t, engine.Evaluate(context.Background(), rec, nil))
}

func TestComplianceService(t *testing.T) {
	ctx := context.Background()
	admin := primitive.NewObjectID()
	now := time.Now()

	users := storetest.NewUsers(models.User{Email: "a@example.com"}, models.User{Email: "b@example.com"})
	records := storetest.NewRecords(models.Record{}, models.Record{}, models.Record{}, models.Record{})
	alerts := storetest.NewAlerts(
		models.Alert{Severity: models.SeverityHigh, Status: models.AlertActive, CreatedAt: now},
		models.Alert{Severity: models.SeverityCritical, Status: models.AlertActive, CreatedAt: now.Add(-48 * time.Hour)},
		models.Alert{Severity: models.SeverityMedium, Status: models.AlertResolved, CreatedAt: now},
	)
	blacklist := storetest.NewBlacklist()
	engine := services.NewComplianceEngine(records, blacklist, services.ComplianceRules{}, zap.NewNop())
	svc := services.NewComplianceService(engine, users, records, alerts, blacklist)

	t.Run("stats", func(t *testing.T) {
		st, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), st.TotalUsers)
		assert.Equal(t, int64(4), st.TotalRecords)
		assert.Equal(t, int64(3), st.TotalAlerts)
		assert.Equal(t, int64(2), st.ActiveAlerts)
		assert.Equal(t, int64(2), st.RecentAlerts24h)
		assert.Equal(t, int64(0), st.SeverityBreakdown[models.SeverityLow])
		assert.Equal(t, int64(1), st.SeverityBreakdown[models.SeverityCritical])
		assert.Equal(t, 50.0, st.ComplianceScore)
	})

	t.Run("alerts filter by severity", func(t *testing.T) {
		list, err := svc.Alerts(ctx, "", models.SeverityCritical, 0)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.SeverityCritical, list[0].Severity)

		list, err = svc.Alerts(ctx, models.AlertResolved, "", 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("severity is applied before the limit", func(t *testing.T) {
		many := storetest.NewAlerts(models.Alert{Severity: models.SeverityCritical, Status: models.AlertActive})
		for i := 0; i < 60; i++ {
			require.NoError(t, many.InsertMany(ctx, []models.Alert{{Severity: models.SeverityLow, Status: models.AlertActive}}))
		}
		svc := services.NewComplianceService(engine, users, records, many, blacklist)

		list, err := svc.Alerts(ctx, "", models.SeverityCritical, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.SeverityCritical, list[0].Severity)

		list, err = svc.Alerts(ctx, "", models.SeverityLow, 0)
		require.NoError(t, err)
		assert.Len(t, list, 50)
	})

	t.Run("resolve", func(t *testing.T) {
		list, err := svc.Alerts(ctx, "", models.SeverityHigh, 0)
		require.NoError(t, err)
		require.Len(t, list, 1)

		require.NoError(t, svc.Resolve(ctx, list[0].ID, admin, " false positive "))
		resolved, err := svc.Alerts(ctx, models.AlertResolved, models.SeverityHigh, 0)
		require.NoError(t, err)
		require.Len(t, resolved, 1)
		assert.Equal(t, "false positive", resolved[0].ResolutionNotes)

		assert.ErrorIs(t, svc.Resolve(ctx, primitive.NewObjectID(), admin, ""), services.ErrNotFound)
	})

	t.Run("blacklist administration", func(t *testing.T) {
		_, err := svc.AddToBlacklist(ctx, "1234", "bad", admin)
		assert.ErrorIs(t, err, services.ErrInvalidInput)

		entry, err := svc.AddToBlacklist(ctx, "2345 6789 0124", "reported stolen", admin)
		require.NoError(t, err)
		assert.Equal(t, sharedNumber, entry.AadhaarNumber)
		assert.True(t, engine.IsBlacklisted(sharedNumber))

		list, err := svc.Blacklist(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, svc.RemoveFromBlacklist(ctx, sharedNumber))
		assert.False(t, engine.IsBlacklisted(sharedNumber))
		assert.ErrorIs(t, svc.RemoveFromBlacklist(ctx, sharedNumber), services.ErrNotFound)
	})
}
