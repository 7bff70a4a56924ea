package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"kyc-hub/imaging"
	"kyc-hub/models"
	"kyc-hub/ocr"
	"kyc-hub/storage"
)

// DocumentReader runs OCR over an upload. *ocr.Processor implements it.
type DocumentReader interface {
	Process(ctx context.Context, doc ocr.Document) ocr.Result
}

type KYCConfig struct {
	AllowedExtensions []string
	MaxUploadSize     int64
}

type ExtractInput struct {
	UserID      primitive.ObjectID
	DocType     string
	EnteredName string
	Filename    string
	ContentType string
	Data        []byte
	SaveRecord  bool
	IP          string
}

type ExtractResult struct {
	Success           bool                     `json:"success"`
	RecordID          string                   `json:"record_id,omitempty"`
	DocumentType      string                   `json:"document_type"`
	ExtractedFields   map[string]string        `json:"extracted_fields"`
	RawText           string                   `json:"raw_text"`
	OCRConfidence     float64                  `json:"ocr_confidence"`
	ConfidenceScore   float64                  `json:"confidence_score"`
	OCRNote           string                   `json:"ocr_note,omitempty"`
	FraudAnalysis     models.FraudAnalysis     `json:"fraud_analysis"`
	NameMatch         models.NameMatch         `json:"name_match"`
	Quality           *imaging.Quality         `json:"image_quality,omitempty"`
	DuplicateCheck    models.DuplicateCheck    `json:"duplicate_check"`
	Behavior          models.BehaviorAnalysis  `json:"behavior_analysis"`
	Validation        models.Validation        `json:"validation"`
	Alerts            []models.Alert           `json:"compliance_alerts"`
	Status            string                   `json:"status,omitempty"`
	RecommendedStatus string                   `json:"recommended_status"`
	FileURL           string                   `json:"file_url,omitempty"`
	Summary           models.ProcessingDetails `json:"processing_summary"`
}

// KYCService runs the extraction pipeline: OCR, name matching, image
// checks, duplicate and behaviour analysis, fraud scoring and, when asked,
// persistence with compliance alerts.
type KYCService struct {
	reader  DocumentReader
	files   storage.Storage
	records RecordStore
	hashes  HashStore
	alerts  AlertStore
	engine  *ComplianceEngine
	audit   *AuditService
	cfg     KYCConfig
	log     *zap.Logger
	clock   func() time.Time
}

func NewKYCService(reader DocumentReader, files storage.Storage, records RecordStore, hashes HashStore, alerts AlertStore,
	engine *ComplianceEngine, audit *AuditService, cfg KYCConfig, log *zap.Logger) *KYCService {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = 16 << 20
	}
	return &KYCService{
		reader:  reader,
		files:   files,
		records: records,
		hashes:  hashes,
		alerts:  alerts,
		engine:  engine,
		audit:   audit,
		cfg:     cfg,
		log:     log,
		clock:   time.Now,
	}
}

// CheckFile validates an upload without processing it
func (s *KYCService) CheckFile(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" || size == 0 {
		return fmt.Errorf("%w: no file provided", ErrInvalidInput)
	}
	if !ocr.AllowedFile(filename, s.cfg.AllowedExtensions) {
		return fmt.Errorf("%w: allowed types are %s", ErrUnsupportedFile, strings.Join(s.cfg.AllowedExtensions, ", "))
	}
	if size > s.cfg.MaxUploadSize {
		return fmt.Errorf("%w: limit is %d MB", ErrFileTooLarge, s.cfg.MaxUploadSize>>20)
	}
	return nil
}

func (s *KYCService) validateInput(in *ExtractInput) error {
	in.DocType = strings.ToLower(strings.TrimSpace(in.DocType))
	in.EnteredName = strings.TrimSpace(in.EnteredName)
	if !models.ValidDocType(in.DocType) {
		return fmt.Errorf("%w: document type must be aadhaar or pan", ErrInvalidInput)
	}
	if len([]rune(in.EnteredName)) < 2 {
		return fmt.Errorf("%w: name must be at least 2 characters", ErrInvalidInput)
	}
	return s.CheckFile(in.Filename, int64(len(in.Data)))
}

// Extract processes one uploaded document
func (s *KYCService) Extract(ctx context.Context, in ExtractInput) (*ExtractResult, error) {
	start := s.clock()
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}
	log := s.log.With(zap.String("user_id", in.UserID.Hex()), zap.String("document_type", in.DocType))

	var stored *storage.Object
	if in.SaveRecord {
		obj, err := s.files.Save(ctx, bytes.NewReader(in.Data), in.ContentType, in.DocType, in.Filename)
		if err != nil {
			return nil, fmt.Errorf("store upload: %w", err)
		}
		stored = &obj
	}

	res := s.reader.Process(ctx, ocr.Document{Filename: in.Filename, Data: in.Data, DocType: in.DocType})
	if !res.Success {
		log.Warn("OCR failed", zap.String("file", in.Filename), zap.String("error", res.Error))
		s.discardUpload(ctx, stored, log)
		return nil, fmt.Errorf("%w: %s", ErrProcessingFailed, res.Error)
	}

	out := &ExtractResult{
		Success:         true,
		DocumentType:    in.DocType,
		ExtractedFields: res.ExtractedFields,
		RawText:         res.RawText,
		OCRConfidence:   res.ConfidenceScore,
		OCRNote:         res.Error,
		Alerts:          []models.Alert{},
		Summary: models.ProcessingDetails{
			OCRSuccess:          true,
			OCRError:            res.Error,
			TextLength:          len(res.RawText),
			PreprocessingMethod: res.Method,
		},
	}
	out.NameMatch = MatchNames(res.ExtractedFields[ocr.FieldName], in.EnteredName)

	var hash string
	if res.Image != nil {
		q := imaging.AnalyzeQuality(res.Image)
		out.Quality = &q
		out.Summary.QualityAnalyzed = true

		hash = imaging.AverageHash(res.Image)
		out.Summary.ImageHashGenerated = true
		out.DuplicateCheck = s.duplicates(ctx, hash, in.UserID, log)
	}

	uid := in.UserID
	history, err := s.records.List(ctx, RecordFilter{UserID: &uid, Oldest: true})
	if err != nil {
		log.Warn("behaviour analysis skipped", zap.Error(err))
	} else {
		out.Behavior = AnalyzeBehavior(history, res.ExtractedFields, s.clock())
		out.Summary.BehaviorAnalyzed = true
	}

	patterns := SuspiciousPatterns(res.ExtractedFields)
	out.FraudAnalysis = ScoreFraud(FraudInput{
		DocType:       in.DocType,
		Fields:        res.ExtractedFields,
		NameMatch:     out.NameMatch,
		Quality:       out.Quality,
		Duplicate:     out.DuplicateCheck,
		OCRConfidence: res.ConfidenceScore,
		Patterns:      patterns,
	})
	out.ConfidenceScore = out.FraudAnalysis.FinalConfidence
	out.Validation = Validate(in.DocType, res.ExtractedFields, out.FraudAnalysis, out.Quality)

	if !in.SaveRecord {
		out.RecommendedStatus = RecommendStatus(out.FraudAnalysis.FraudScore, nil)
		out.Summary.ProcessingTimeMS = msSince(start, s.clock())
		return out, nil
	}

	now := s.clock().UTC()
	rec := &models.Record{
		ID:               primitive.NewObjectID(),
		UserID:           in.UserID,
		DocumentType:     in.DocType,
		Filename:         stored.Key,
		OriginalFilename: in.Filename,
		FileURL:          stored.URL,
		UserEnteredName:  in.EnteredName,
		Status:           models.StatusPending,
		ExtractedFields:  res.ExtractedFields,
		RawText:          res.RawText,
		OCRConfidence:    res.ConfidenceScore,
		ConfidenceScore:  out.ConfidenceScore,
		FraudScore:       out.FraudAnalysis.FraudScore,
		RiskCategory:     out.FraudAnalysis.RiskLevel,
		RiskFactors:      out.FraudAnalysis.RiskFactors,
		NameMatch:        out.NameMatch,
		DuplicateCheck:   out.DuplicateCheck,
		Behavior:         out.Behavior,
		DocumentHash:     hash,
		Validation:       out.Validation,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if out.Quality != nil {
		rec.Quality = *out.Quality
	}

	alerts := s.engine.Evaluate(ctx, rec, patterns)
	rec.AlertCount = len(alerts)
	rec.RecommendedStatus = RecommendStatus(rec.FraudScore, alerts)
	out.Summary.ProcessingTimeMS = msSince(start, s.clock())
	rec.ProcessingDetails = out.Summary

	if err := s.records.Insert(ctx, rec); err != nil {
		s.discardUpload(ctx, stored, log)
		return nil, fmt.Errorf("save record: %w", err)
	}
	if hash != "" {
		if err := s.hashes.Insert(ctx, &models.DocumentHash{
			Hash:         hash,
			RecordID:     rec.ID,
			UserID:       rec.UserID,
			DocumentType: rec.DocumentType,
			CreatedAt:    now,
		}); err != nil {
			log.Warn("failed to store document hash", zap.Error(err))
		}
	}
	if len(alerts) > 0 {
		if err := s.alerts.InsertMany(ctx, alerts); err != nil {
			log.Error("failed to store compliance alerts", zap.Error(err), zap.Int("alerts", len(alerts)))
		}
	}
	s.audit.Record(ctx, in.UserID.Hex(), models.ActionRecordCreate, map[string]interface{}{
		"record_id":     rec.ID.Hex(),
		"document_type": rec.DocumentType,
		"fraud_score":   rec.FraudScore,
		"alerts":        len(alerts),
	}, in.IP)

	log.Info("KYC record saved",
		zap.String("record_id", rec.ID.Hex()),
		zap.Float64("fraud_score", rec.FraudScore),
		zap.String("recommended_status", rec.RecommendedStatus),
		zap.Int("alerts", len(alerts)),
	)

	out.RecordID = rec.ID.Hex()
	out.Status = rec.Status
	out.RecommendedStatus = rec.RecommendedStatus
	out.FileURL = rec.FileURL
	out.Alerts = alerts
	return out, nil
}

// duplicates looks up identical image hashes submitted by other users
// discardUpload removes a stored file that no record will point to
func (s *KYCService) discardUpload(ctx context.Context, stored *storage.Object, log *zap.Logger) {
	if stored == nil {
		return
	}
	if err := s.files.Delete(ctx, stored.Key); err != nil {
		log.Warn("failed to remove upload", zap.String("key", stored.Key), zap.Error(err))
	}
}

func (s *KYCService) duplicates(ctx context.Context, hash string, userID primitive.ObjectID, log *zap.Logger) models.DuplicateCheck {
	var d models.DuplicateCheck
	matches, err := s.hashes.FindByHash(ctx, hash)
	if err != nil {
		log.Warn("duplicate lookup skipped", zap.Error(err))
		return d
	}
	users := map[string]bool{}
	for _, m := range matches {
		if m.UserID == userID {
			continue
		}
		d.DuplicateRecord = append(d.DuplicateRecord, m.RecordID.Hex())
		if !users[m.UserID.Hex()] {
			users[m.UserID.Hex()] = true
			d.DuplicateUsers = append(d.DuplicateUsers, m.UserID.Hex())
		}
	}
	d.DuplicateCount = len(d.DuplicateRecord)
	d.IsDuplicate = d.DuplicateCount > 0
	return d
}

func msSince(start, end time.Time) float64 {
	return round1(float64(end.Sub(start).Microseconds()) / 1000)
}
