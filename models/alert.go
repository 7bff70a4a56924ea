package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

const (
	AlertActive   = "active"
	AlertResolved = "resolved"
)

// Alert types raised by the compliance rules
const (
	AlertDuplicateDocument  = "duplicate_document"
	AlertPoorImageQuality   = "poor_image_quality"
	AlertSharedAddress      = "multiple_accounts"
	AlertHighRiskUser       = "high_risk_user"
	AlertBlacklisted        = "blacklisted_aadhaar"
	AlertSuspiciousPattern  = "suspicious_pattern"
	AlertSuspiciousBehavior = "suspicious_behavior"
)

type Alert struct {
	ID              primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	AlertID         string                 `json:"alert_id" bson:"alert_id"`
	RecordID        primitive.ObjectID     `json:"record_id" bson:"record_id"`
	UserID          primitive.ObjectID     `json:"user_id" bson:"user_id"`
	AlertType       string                 `json:"alert_type" bson:"alert_type"`
	Severity        string                 `json:"severity" bson:"severity"`
	Message         string                 `json:"message" bson:"message"`
	ConfidenceScore float64                `json:"confidence_score" bson:"confidence_score"`
	Metadata        map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Status          string                 `json:"status" bson:"status"`
	ResolutionNotes string                 `json:"resolution_notes,omitempty" bson:"resolution_notes,omitempty"`
	ResolvedBy      *primitive.ObjectID    `json:"resolved_by,omitempty" bson:"resolved_by,omitempty"`
	CreatedAt       time.Time              `json:"created_at" bson:"created_at"`
	ResolvedAt      *time.Time             `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}
