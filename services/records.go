package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"kyc-hub/models"
	"kyc-hub/storage"
)

// Viewer identifies who is asking for records
type Viewer struct {
	UserID primitive.ObjectID
	Admin  bool
}

type RecordStats struct {
	Total                   int64            `json:"total_records"`
	Approved                int64            `json:"approved"`
	Pending                 int64            `json:"pending"`
	Rejected                int64            `json:"rejected"`
	RiskBreakdown           map[string]int64 `json:"risk_breakdown"`
	DocumentTypes           map[string]int64 `json:"document_types"`
	AverageConfidence       float64          `json:"average_confidence"`
	AverageFraudScore       float64          `json:"average_fraud_score"`
	VerificationSuccessRate float64          `json:"verification_success_rate"`
	FraudDetectionRate      float64          `json:"fraud_detection_rate"`
}

type RecordService struct {
	records RecordStore
	files   storage.Storage
	audit   *AuditService
	log     *zap.Logger
	clock   func() time.Time
}

func NewRecordService(records RecordStore, files storage.Storage, audit *AuditService, log *zap.Logger) *RecordService {
	return &RecordService{records: records, files: files, audit: audit, log: log, clock: time.Now}
}

// List returns the viewer's own records; admins see everyone's
func (s *RecordService) List(ctx context.Context, v Viewer, f RecordFilter) ([]models.Record, error) {
	if !v.Admin {
		f.UserID = &v.UserID
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	return s.records.List(ctx, f)
}

// Search is the admin keyword search
func (s *RecordService) Search(ctx context.Context, f RecordFilter) ([]models.Record, error) {
	f.Keyword = strings.TrimSpace(f.Keyword)
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	return s.records.List(ctx, f)
}

func (s *RecordService) Get(ctx context.Context, v Viewer, id primitive.ObjectID) (*models.Record, error) {
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.Admin && rec.UserID != v.UserID {
		return nil, ErrForbidden
	}
	return rec, nil
}

// Delete removes one of the owner's records together with its upload
func (s *RecordService) Delete(ctx context.Context, v Viewer, id primitive.ObjectID, ip string) error {
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.UserID != v.UserID {
		return ErrForbidden
	}
	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}
	if rec.Filename != "" {
		if err := s.files.Delete(ctx, rec.Filename); err != nil {
			s.log.Warn("failed to delete upload", zap.String("key", rec.Filename), zap.Error(err))
		}
	}
	s.audit.Record(ctx, v.UserID.Hex(), models.ActionRecordDelete, map[string]interface{}{"record_id": id.Hex()}, ip)
	return nil
}

// Resubmit sends one of the owner's rejected records back to the review queue
func (s *RecordService) Resubmit(ctx context.Context, v Viewer, id primitive.ObjectID, ip string) error {
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.UserID != v.UserID {
		return ErrForbidden
	}
	if rec.Status == models.StatusApproved {
		return fmt.Errorf("%w: status is %s", ErrAlreadyDecided, rec.Status)
	}
	if err := s.records.Resubmit(ctx, id, s.clock().UTC()); err != nil {
		return err
	}
	s.audit.Record(ctx, v.UserID.Hex(), models.ActionRecordResubmit, map[string]interface{}{"record_id": id.Hex()}, ip)
	return nil
}

// Stats summarises the viewer's records, or all records for admins
func (s *RecordService) Stats(ctx context.Context, v Viewer) (*RecordStats, error) {
	f := RecordFilter{}
	if !v.Admin {
		f.UserID = &v.UserID
	}
	records, err := s.records.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return ComputeStats(records), nil
}

func ComputeStats(records []models.Record) *RecordStats {
	st := &RecordStats{
		Total:         int64(len(records)),
		RiskBreakdown: map[string]int64{models.RiskLow: 0, models.RiskMedium: 0, models.RiskHigh: 0},
		DocumentTypes: map[string]int64{models.DocTypeAadhaar: 0, models.DocTypePAN: 0},
	}
	if len(records) == 0 {
		return st
	}

	var confidence, fraud float64
	for _, r := range records {
		switch r.Status {
		case models.StatusApproved:
			st.Approved++
		case models.StatusRejected:
			st.Rejected++
		default:
			st.Pending++
		}
		if r.RiskCategory != "" {
			st.RiskBreakdown[r.RiskCategory]++
		}
		st.DocumentTypes[r.DocumentType]++
		confidence += r.ConfidenceScore
		fraud += r.FraudScore
	}

	n := float64(len(records))
	st.AverageConfidence = round1(confidence / n)
	st.AverageFraudScore = round1(fraud / n)
	st.VerificationSuccessRate = round1(float64(st.Approved) / n * 100)
	st.FraudDetectionRate = round1(float64(st.RiskBreakdown[models.RiskHigh]) / n * 100)
	return st
}

// Export returns every record matching f for the admin export
func (s *RecordService) Export(ctx context.Context, adminID primitive.ObjectID, f RecordFilter, format, ip string) ([]models.Record, error) {
	f.Limit = 0
	records, err := s.records.List(ctx, f)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, adminID.Hex(), models.ActionRecordsExport, map[string]interface{}{
		"records": len(records),
		"format":  format,
	}, ip)
	return records, nil
}

var csvHeader = []string{
	"record_id", "user_id", "document_type", "user_entered_name", "extracted_name",
	"document_number", "status", "recommended_status", "fraud_score", "risk_category",
	"confidence_score", "name_similarity", "alert_count", "admin_comment", "created_at", "reviewed_at",
}

// WriteCSV writes records in the export column layout
// csvText keeps spreadsheets from evaluating user supplied text as a formula
func csvText(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func WriteCSV(w io.Writer, records []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		reviewed := ""
		if r.ReviewedAt != nil {
			reviewed = r.ReviewedAt.Format(time.RFC3339)
		}
		row := []string{
			r.ID.Hex(),
			r.UserID.Hex(),
			r.DocumentType,
			csvText(r.UserEnteredName),
			csvText(r.ExtractedFields["name"]),
			csvText(r.DocumentNumber()),
			r.Status,
			r.RecommendedStatus,
			strconv.FormatFloat(r.FraudScore, 'f', 1, 64),
			r.RiskCategory,
			strconv.FormatFloat(r.ConfidenceScore, 'f', 1, 64),
			strconv.FormatFloat(r.NameMatch.Similarity, 'f', 1, 64),
			strconv.Itoa(r.AlertCount),
			csvText(r.AdminComment),
			r.CreatedAt.Format(time.RFC3339),
			reviewed,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
