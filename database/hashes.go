package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kyc-hub/models"
	"kyc-hub/services"
)

type HashRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewHashRepository(d *DB) *HashRepository {
	return &HashRepository{coll: d.Collection(HashesCollection), timeout: d.timeout}
}

func (r *HashRepository) Insert(ctx context.Context, h *models.DocumentHash) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, h)
	return err
}

func (r *HashRepository) FindByHash(ctx context.Context, hash string) ([]models.DocumentHash, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"hash": hash})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var hashes []models.DocumentHash
	if err := cursor.All(ctx, &hashes); err != nil {
		return nil, err
	}
	return hashes, nil
}

type BlacklistRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewBlacklistRepository(d *DB) *BlacklistRepository {
	return &BlacklistRepository{coll: d.Collection(BlacklistCollection), timeout: d.timeout}
}

// Add inserts the number or refreshes the reason of an existing entry
func (r *BlacklistRepository) Add(ctx context.Context, e *models.BlacklistEntry) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"aadhaar_number": e.AadhaarNumber},
		bson.M{
			"$set":         bson.M{"reason": e.Reason, "added_by": e.AddedBy},
			"$setOnInsert": bson.M{"created_at": e.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		e.ID = id
	}
	return nil
}

func (r *BlacklistRepository) Remove(ctx context.Context, number string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"aadhaar_number": number})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (r *BlacklistRepository) List(ctx context.Context) ([]models.BlacklistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.BlacklistEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

var (
	_ services.UserStore      = (*UserRepository)(nil)
	_ services.RecordStore    = (*RecordRepository)(nil)
	_ services.AlertStore     = (*AlertRepository)(nil)
	_ services.AuditStore     = (*AuditRepository)(nil)
	_ services.HashStore      = (*HashRepository)(nil)
	_ services.BlacklistStore = (*BlacklistRepository)(nil)
)
