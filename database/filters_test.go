package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"kyc-hub/models"
	"kyc-hub/services"
)

func TestRecordFilter(t *testing.T) {
	t.Run("empty filter matches everything", func(t *testing.T) {
		assert.Empty(t, recordFilter(services.RecordFilter{}))
	})

	t.Run("maps every field", func(t *testing.T) {
		uid := primitive.NewObjectID()
		since := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

		f := recordFilter(services.RecordFilter{
			UserID:       &uid,
			Status:       models.StatusPending,
			DocumentType: models.DocTypeAadhaar,
			RiskCategory: models.RiskHigh,
			MinFraud:     70,
			Since:        since,
		})

		assert.Equal(t, uid, f["user_id"])
		assert.Equal(t, "pending", f["status"])
		assert.Equal(t, "aadhaar", f["document_type"])
		assert.Equal(t, "high", f["risk_category"])
		assert.Equal(t, bson.M{"$gte": 70.0}, f["fraud_score"])
		assert.Equal(t, bson.M{"$gte": since}, f["created_at"])
	})

	t.Run("keyword is escaped and case insensitive", func(t *testing.T) {
		f := recordFilter(services.RecordFilter{Keyword: "a.b"})

		or, ok := f["$or"].([]bson.M)
		require.True(t, ok)
		require.Len(t, or, 3)
		assert.Equal(t, bson.M{"$regex": `a\.b`, "$options": "i"}, or[0]["user_entered_name"])
	})
}

func TestUserFilter(t *testing.T) {
	assert.Empty(t, userFilter(services.UserFilter{Page: 2, PerPage: 10}))

	f := userFilter(services.UserFilter{Role: models.RoleAdmin, Search: "ann+"})
	assert.Equal(t, "admin", f["role"])
	or := f["$or"].([]bson.M)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"$regex": `ann\+`, "$options": "i"}, or[1]["email"])
}

func TestAlertFilter(t *testing.T) {
	rid := primitive.NewObjectID()
	f := alertFilter(services.AlertFilter{Status: models.AlertActive, RecordID: &rid, Limit: 5})

	assert.Equal(t, bson.M{"status": "active", "record_id": rid}, f)

	f = alertFilter(services.AlertFilter{Status: models.AlertActive, Severity: models.SeverityCritical})
	assert.Equal(t, bson.M{"status": "active", "severity": "critical"}, f)
}

func TestDocumentNumberField(t *testing.T) {
	assert.Equal(t, "extracted_fields.pan_number", documentNumberField(models.DocTypePAN))
	assert.Equal(t, "extracted_fields.aadhaar_number", documentNumberField(models.DocTypeAadhaar))
}

func TestIndexesCoverEveryCollection(t *testing.T) {
	idx := indexes()
	for _, name := range []string{
		UsersCollection, RecordsCollection, AlertsCollection,
		AuditCollection, HashesCollection, BlacklistCollection,
	} {
		assert.NotEmpty(t, idx[name], name)
	}
	require.NotNil(t, idx[UsersCollection][0].Options)
	assert.True(t, *idx[UsersCollection][0].Options.Unique)
}
