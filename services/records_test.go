package services_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"kyc-hub/models"
	"kyc-hub/services"
	"kyc-hub/services/storetest"
	"kyc-hub/storage"
)

func newRecordService(t *testing.T, records *storetest.Records) (*services.RecordService, storage.Storage, *storetest.Audit) {
	t.Helper()
	files, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	audit, store := newAudit()
	return services.NewRecordService(records, files, audit, zap.NewNop()), files, store
}

func TestRecordListAndGet(t *testing.T) {
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	aliceRec := primitive.NewObjectID()
	records := storetest.NewRecords(
		models.Record{ID: aliceRec, UserID: alice, Status: models.StatusPending},
		models.Record{UserID: bob, Status: models.StatusApproved},
	)
	svc, _, _ := newRecordService(t, records)

	own, err := svc.List(ctx, services.Viewer{UserID: alice}, services.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, alice, own[0].UserID)

	// a user cannot widen the filter to someone else
	own, err = svc.List(ctx, services.Viewer{UserID: alice}, services.RecordFilter{UserID: &bob})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, alice, own[0].UserID)

	all, err := svc.List(ctx, services.Viewer{UserID: bob, Admin: true}, services.RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.Get(ctx, services.Viewer{UserID: bob}, aliceRec)
	assert.ErrorIs(t, err, services.ErrForbidden)
	rec, err := svc.Get(ctx, services.Viewer{UserID: bob, Admin: true}, aliceRec)
	require.NoError(t, err)
	assert.Equal(t, aliceRec, rec.ID)
	_, err = svc.Get(ctx, services.Viewer{UserID: alice}, primitive.NewObjectID())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRecordDelete(t *testing.T) {
	ctx := context.Background()
	owner := primitive.NewObjectID()
	records := storetest.NewRecords()
	svc, files, audit := newRecordService(t, records)

	obj, err := files.Save(ctx, strings.NewReader("img"), "image/png", "aadhaar", "a.png")
	require.NoError(t, err)
	rec := &models.Record{UserID: owner, Filename: obj.Key}
	require.NoError(t, records.Insert(ctx, rec))

	assert.ErrorIs(t, svc.Delete(ctx, services.Viewer{UserID: primitive.NewObjectID(), Admin: true}, rec.ID, ""), services.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, services.Viewer{UserID: owner}, rec.ID, ""))
	_, err = records.FindByID(ctx, rec.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Equal(t, []string{models.ActionRecordDelete}, audit.Actions())
}

func TestRecordResubmit(t *testing.T) {
	ctx := context.Background()
	owner := primitive.NewObjectID()
	rejected, approved := primitive.NewObjectID(), primitive.NewObjectID()
	admin := primitive.NewObjectID()
	reviewedAt := time.Now()
	records := storetest.NewRecords(
		models.Record{ID: rejected, UserID: owner, Status: models.StatusRejected, AdminComment: "blurry", ReviewedBy: &admin, ReviewedAt: &reviewedAt},
		models.Record{ID: approved, UserID: owner, Status: models.StatusApproved},
	)
	svc, _, _ := newRecordService(t, records)

	assert.ErrorIs(t, svc.Resubmit(ctx, services.Viewer{UserID: primitive.NewObjectID()}, rejected, ""), services.ErrForbidden)
	assert.ErrorIs(t, svc.Resubmit(ctx, services.Viewer{UserID: owner}, approved, ""), services.ErrAlreadyDecided)

	require.NoError(t, svc.Resubmit(ctx, services.Viewer{UserID: owner}, rejected, ""))
	rec, err := records.FindByID(ctx, rejected)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, rec.Status)
	assert.Empty(t, rec.AdminComment)
	assert.Nil(t, rec.ReviewedBy)
}

func TestComputeStats(t *testing.T) {
	st := services.ComputeStats([]models.Record{
		{Status: models.StatusApproved, DocumentType: models.DocTypeAadhaar, RiskCategory: models.RiskLow, ConfidenceScore: 90, FraudScore: 10},
		{Status: models.StatusPending, DocumentType: models.DocTypeAadhaar, RiskCategory: models.RiskHigh, ConfidenceScore: 40, FraudScore: 80},
		{Status: models.StatusRejected, DocumentType: models.DocTypePAN, RiskCategory: models.RiskMedium, ConfidenceScore: 60, FraudScore: 45},
		{Status: models.StatusApproved, DocumentType: models.DocTypePAN, RiskCategory: models.RiskLow, ConfidenceScore: 70, FraudScore: 5},
	})
	assert.Equal(t, int64(4), st.Total)
	assert.Equal(t, int64(2), st.Approved)
	assert.Equal(t, int64(1), st.Pending)
	assert.Equal(t, int64(1), st.Rejected)
	assert.Equal(t, int64(2), st.RiskBreakdown[models.RiskLow])
	assert.Equal(t, int64(2), st.DocumentTypes[models.DocTypePAN])
	assert.Equal(t, 65.0, st.AverageConfidence)
	assert.Equal(t, 35.0, st.AverageFraudScore)
	assert.Equal(t, 50.0, st.VerificationSuccessRate)
	assert.Equal(t, 25.0, st.FraudDetectionRate)

	empty := services.ComputeStats(nil)
	assert.Zero(t, empty.Total)
	assert.Equal(t, int64(0), empty.RiskBreakdown[models.RiskHigh])
}

func TestRecordStatsScopedToViewer(t *testing.T) {
	owner := primitive.NewObjectID()
	records := storetest.NewRecords(
		models.Record{UserID: owner, Status: models.StatusApproved},
		models.Record{UserID: primitive.NewObjectID(), Status: models.StatusApproved},
	)
	svc, _, _ := newRecordService(t, records)

	st, err := svc.Stats(context.Background(), services.Viewer{UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Total)

	st, err = svc.Stats(context.Background(), services.Viewer{UserID: owner, Admin: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Total)
}

func TestExportAndCSV(t *testing.T) {
	ctx := context.Background()
	admin := primitive.NewObjectID()
	records := storetest.NewRecords(
		models.Record{
			DocumentType:    models.DocTypePAN,
			UserEnteredName: "Rahul, Kumar",
			ExtractedFields: map[string]string{"name": "RAHUL KUMAR", "pan_number": "ABCPK1234F"},
			Status:          models.StatusPending,
			FraudScore:      12.34,
			CreatedAt:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
	)
	svc, _, audit := newRecordService(t, records)

	list, err := svc.Export(ctx, admin, services.RecordFilter{}, "csv", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{models.ActionRecordsExport}, audit.Actions())

	var buf bytes.Buffer
	require.NoError(t, services.WriteCSV(&buf, list))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "record_id", rows[0][0])
	assert.Equal(t, "Rahul, Kumar", rows[1][3])
	assert.Equal(t, "ABCPK1234F", rows[1][5])
	assert.Equal(t, "12.3", rows[1][8])
	assert.Equal(t, "2024-05-01T10:00:00Z", rows[1][14])
	assert.Equal(t, "", rows[1][15])
}

func TestWriteCSVEscapesFormulas(t *testing.T) {
	list := []models.Record{{
		DocumentType:    models.DocTypeAadhaar,
		UserEnteredName: `=HYPERLINK("http://evil.example","x")`,
		ExtractedFields: map[string]string{"name": "+SUM(A1:A9)", "aadhaar_number": "234567890124"},
		AdminComment:    "@cmd",
	}, {
		UserEnteredName: "-2+3",
		ExtractedFields: map[string]string{"name": "Anita Rao"},
		AdminComment:    "looks fine",
	}}

	var buf bytes.Buffer
	require.NoError(t, services.WriteCSV(&buf, list))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, `'=HYPERLINK("http://evil.example","x")`, rows[1][3])
	assert.Equal(t, "'+SUM(A1:A9)", rows[1][4])
	assert.Equal(t, "234567890124", rows[1][5])
	assert.Equal(t, "'@cmd", rows[1][13])
	assert.Equal(t, "'-2+3", rows[2][3])
	assert.Equal(t, "Anita Rao", rows[2][4])
	assert.Equal(t, "looks fine", rows[2][13])
}
