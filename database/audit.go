package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kyc-hub/models"
)

type AuditRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewAuditRepository(d *DB) *AuditRepository {
	return &AuditRepository{coll: d.Collection(AuditCollection), timeout: d.timeout}
}

func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, entry)
	return err
}

// List returns one page of the trail, newest first
func (r *AuditRepository) List(ctx context.Context, page, limit int) ([]models.AuditLog, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64((max(page, 1) - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var logs []models.AuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
