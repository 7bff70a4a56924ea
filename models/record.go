package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"kyc-hub/imaging"
)

const (
	DocTypeAadhaar = "aadhaar"
	DocTypePAN     = "pan"
)

// Review status of a submission
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Status suggested by the compliance engine
const (
	RecommendVerified = "verified"
	RecommendPending  = "pending"
	RecommendFlagged  = "flagged"
	RecommendRejected = "rejected"
)

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

func ValidDocType(docType string) bool {
	return docType == DocTypeAadhaar || docType == DocTypePAN
}

type Record struct {
	ID                primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID            primitive.ObjectID  `json:"user_id" bson:"user_id"`
	DocumentType      string              `json:"document_type" bson:"document_type"`
	Filename          string              `json:"filename" bson:"filename"`
	OriginalFilename  string              `json:"original_filename" bson:"original_filename"`
	FileURL           string              `json:"file_url,omitempty" bson:"file_url,omitempty"`
	UserEnteredName   string              `json:"user_entered_name" bson:"user_entered_name"`
	Status            string              `json:"status" bson:"status"`
	RecommendedStatus string              `json:"recommended_status" bson:"recommended_status"`
	ExtractedFields   map[string]string   `json:"extracted_fields" bson:"extracted_fields"`
	RawText           string              `json:"raw_text,omitempty" bson:"raw_text,omitempty"`
	OCRConfidence     float64             `json:"ocr_confidence" bson:"ocr_confidence"`
	ConfidenceScore   float64             `json:"confidence_score" bson:"confidence_score"`
	FraudScore        float64             `json:"fraud_score" bson:"fraud_score"`
	RiskCategory      string              `json:"risk_category" bson:"risk_category"`
	RiskFactors       []string            `json:"risk_factors" bson:"risk_factors"`
	NameMatch         NameMatch           `json:"name_match" bson:"name_match"`
	Quality           imaging.Quality     `json:"quality" bson:"quality"`
	DuplicateCheck    DuplicateCheck      `json:"duplicate_check" bson:"duplicate_check"`
	Behavior          BehaviorAnalysis    `json:"behavior" bson:"behavior"`
	DocumentHash      string              `json:"document_hash,omitempty" bson:"document_hash,omitempty"`
	Validation        Validation          `json:"validation" bson:"validation"`
	ProcessingDetails ProcessingDetails   `json:"processing_details" bson:"processing_details"`
	AlertCount        int                 `json:"alert_count" bson:"alert_count"`
	AdminComment      string              `json:"admin_comment,omitempty" bson:"admin_comment,omitempty"`
	ReviewedBy        *primitive.ObjectID `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time          `json:"reviewed_at,omitempty" bson:"reviewed_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" bson:"updated_at"`
}

// Address returns the normalised address used for shared-address checks
func (r *Record) Address() string {
	return r.ExtractedFields["address"]
}

// DocumentNumber returns the Aadhaar or PAN number extracted from the document
func (r *Record) DocumentNumber() string {
	if r.DocumentType == DocTypePAN {
		return r.ExtractedFields["pan_number"]
	}
	return r.ExtractedFields["aadhaar_number"]
}

type ProcessingDetails struct {
	OCRSuccess          bool    `json:"ocr_success" bson:"ocr_success"`
	OCRError            string  `json:"ocr_error,omitempty" bson:"ocr_error,omitempty"`
	TextLength          int     `json:"text_length" bson:"text_length"`
	PreprocessingMethod string  `json:"preprocessing_method,omitempty" bson:"preprocessing_method,omitempty"`
	ImageHashGenerated  bool    `json:"image_hash_generated" bson:"image_hash_generated"`
	QualityAnalyzed     bool    `json:"quality_analyzed" bson:"quality_analyzed"`
	BehaviorAnalyzed    bool    `json:"behavior_analyzed" bson:"behavior_analyzed"`
	ProcessingTimeMS    float64 `json:"processing_time_ms" bson:"processing_time_ms"`
}
