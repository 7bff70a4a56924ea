package db

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kyc-hub/models"
	"kyc-hub/services"
)

// RecordRepository stores KYC records. Reviewed records are copied into the
// permanent archive collection as well.
type RecordRepository struct {
	coll    *mongo.Collection
	archive *mongo.Collection
	timeout time.Duration
}

func NewRecordRepository(d *DB) *RecordRepository {
	return &RecordRepository{
		coll:    d.Collection(RecordsCollection),
		archive: d.Collection(ArchiveCollection),
		timeout: d.timeout,
	}
}

func recordFilter(f services.RecordFilter) bson.M {
	filter := bson.M{}
	if f.UserID != nil {
		filter["user_id"] = *f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.DocumentType != "" {
		filter["document_type"] = f.DocumentType
	}
	if f.RiskCategory != "" {
		filter["risk_category"] = f.RiskCategory
	}
	if f.MinFraud > 0 {
		filter["fraud_score"] = bson.M{"$gte": f.MinFraud}
	}
	if !f.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": f.Since}
	}
	if f.Keyword != "" {
		pattern := regexp.QuoteMeta(f.Keyword)
		filter["$or"] = []bson.M{
			{"user_entered_name": bson.M{"$regex": pattern, "$options": "i"}},
			{"original_filename": bson.M{"$regex": pattern, "$options": "i"}},
			{"extracted_fields.name": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return filter
}

func documentNumberField(docType string) string {
	if docType == models.DocTypePAN {
		return "extracted_fields.pan_number"
	}
	return "extracted_fields.aadhaar_number"
}

func (r *RecordRepository) Insert(ctx context.Context, rec *models.Record) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, rec)
	return err
}

func (r *RecordRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var rec models.Record
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecordRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *RecordRepository) List(ctx context.Context, f services.RecordFilter) ([]models.Record, error) {
	order := -1
	if f.Oldest {
		order = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: order}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	return r.find(ctx, recordFilter(f), opts)
}

func (r *RecordRepository) Count(ctx context.Context, f services.RecordFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.coll.CountDocuments(ctx, recordFilter(f))
}

func (r *RecordRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (r *RecordRepository) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (r *RecordRepository) Resubmit(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.update(ctx, id, bson.M{
		"$set":   bson.M{"status": models.StatusPending, "updated_at": at},
		"$unset": bson.M{"admin_comment": "", "reviewed_by": "", "reviewed_at": ""},
	})
}

func (r *RecordRepository) Decide(ctx context.Context, id primitive.ObjectID, d services.RecordDecision) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "status": models.StatusPending}, bson.M{"$set": bson.M{
		"status":        d.Status,
		"admin_comment": d.Comment,
		"reviewed_by":   d.ReviewedBy,
		"reviewed_at":   d.ReviewedAt,
		"updated_at":    d.ReviewedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return services.ErrNotFound
	}
	return services.ErrAlreadyDecided
}

func (r *RecordRepository) FindByDocumentNumber(ctx context.Context, docType, number string, excludeUser primitive.ObjectID) ([]models.Record, error) {
	filter := bson.M{
		"document_type":              docType,
		documentNumberField(docType): number,
		"user_id":                    bson.M{"$ne": excludeUser},
	}
	return r.find(ctx, filter, options.Find().SetLimit(20))
}

func (r *RecordRepository) CountUsersWithAddress(ctx context.Context, address string, excludeUser primitive.ObjectID) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	users, err := r.coll.Distinct(ctx, "user_id", bson.M{
		"extracted_fields.address": address,
		"user_id":                  bson.M{"$ne": excludeUser},
	})
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// Archive upserts the record into the permanent collection
func (r *RecordRepository) Archive(ctx context.Context, rec *models.Record) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.archive.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	return err
}
