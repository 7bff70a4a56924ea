package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentHash remembers the perceptual hash of every saved upload
type DocumentHash struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Hash         string             `json:"hash" bson:"hash"`
	RecordID     primitive.ObjectID `json:"record_id" bson:"record_id"`
	UserID       primitive.ObjectID `json:"user_id" bson:"user_id"`
	DocumentType string             `json:"document_type" bson:"document_type"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

type BlacklistEntry struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AadhaarNumber string             `json:"aadhaar_number" bson:"aadhaar_number"`
	Reason        string             `json:"reason" bson:"reason"`
	AddedBy       primitive.ObjectID `json:"added_by" bson:"added_by"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}
