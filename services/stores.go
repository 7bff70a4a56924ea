package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"kyc-hub/models"
)

// UserFilter selects users for the admin listing
type UserFilter struct {
	Search  string
	Role    string
	Page    int
	PerPage int
}

// RecordFilter selects KYC records. Zero values are ignored.
type RecordFilter struct {
	UserID       *primitive.ObjectID
	Status       string
	DocumentType string
	RiskCategory string
	MinFraud     float64
	Keyword      string
	Since        time.Time
	Limit        int64
	Oldest       bool
}

type AlertFilter struct {
	Status   string
	Severity string
	UserID   *primitive.ObjectID
	RecordID *primitive.ObjectID
	Since    time.Time
	Limit    int64
}

// RecordDecision is written when an admin approves or rejects a record
type RecordDecision struct {
	Status     string
	Comment    string
	ReviewedBy primitive.ObjectID
	ReviewedAt time.Time
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error
	List(ctx context.Context, f UserFilter) ([]models.User, int64, error)
	Count(ctx context.Context) (int64, error)
	DeleteUnverifiedBefore(ctx context.Context, before time.Time) (int64, error)
}

type RecordStore interface {
	Insert(ctx context.Context, r *models.Record) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Record, error)
	List(ctx context.Context, f RecordFilter) ([]models.Record, error)
	Count(ctx context.Context, f RecordFilter) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Resubmit(ctx context.Context, id primitive.ObjectID, at time.Time) error
	// Decide applies d only while the record is still pending. It returns
	// ErrAlreadyDecided when another decision got there first.
	Decide(ctx context.Context, id primitive.ObjectID, d RecordDecision) error
	// FindByDocumentNumber returns records of other users carrying the same Aadhaar/PAN number
	FindByDocumentNumber(ctx context.Context, docType, number string, excludeUser primitive.ObjectID) ([]models.Record, error)
	// CountUsersWithAddress counts distinct other users whose records share address
	CountUsersWithAddress(ctx context.Context, address string, excludeUser primitive.ObjectID) (int, error)
	Archive(ctx context.Context, r *models.Record) error
}

type AlertStore interface {
	InsertMany(ctx context.Context, alerts []models.Alert) error
	List(ctx context.Context, f AlertFilter) ([]models.Alert, error)
	Count(ctx context.Context, f AlertFilter) (int64, error)
	CountBySeverity(ctx context.Context) (map[string]int64, error)
	Resolve(ctx context.Context, id primitive.ObjectID, by primitive.ObjectID, notes string, at time.Time) error
	SetStatusForRecord(ctx context.Context, recordID primitive.ObjectID, status string) (int64, error)
}

type AuditStore interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, page, limit int) ([]models.AuditLog, int64, error)
}

type HashStore interface {
	Insert(ctx context.Context, h *models.DocumentHash) error
	FindByHash(ctx context.Context, hash string) ([]models.DocumentHash, error)
}

type BlacklistStore interface {
	Add(ctx context.Context, e *models.BlacklistEntry) error
	Remove(ctx context.Context, number string) error
	List(ctx context.Context) ([]models.BlacklistEntry, error)
}
