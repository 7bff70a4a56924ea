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

type AlertRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewAlertRepository(d *DB) *AlertRepository {
	return &AlertRepository{coll: d.Collection(AlertsCollection), timeout: d.timeout}
}

func alertFilter(f services.AlertFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Severity != "" {
		filter["severity"] = f.Severity
	}
	if f.UserID != nil {
		filter["user_id"] = *f.UserID
	}
	if f.RecordID != nil {
		filter["record_id"] = *f.RecordID
	}
	if !f.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": f.Since}
	}
	return filter
}

func (r *AlertRepository) InsertMany(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	docs := make([]interface{}, len(alerts))
	for i := range alerts {
		if alerts[i].ID.IsZero() {
			alerts[i].ID = primitive.NewObjectID()
		}
		docs[i] = alerts[i]
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}

func (r *AlertRepository) List(ctx context.Context, f services.AlertFilter) ([]models.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cursor, err := r.coll.Find(ctx, alertFilter(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *AlertRepository) Count(ctx context.Context, f services.AlertFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.coll.CountDocuments(ctx, alertFilter(f))
}

func (r *AlertRepository) CountBySeverity(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$severity"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Severity string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Severity] = row.Count
	}
	return out, nil
}

func (r *AlertRepository) Resolve(ctx context.Context, id primitive.ObjectID, by primitive.ObjectID, notes string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":           models.AlertResolved,
		"resolved_by":      by,
		"resolution_notes": notes,
		"resolved_at":      at,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (r *AlertRepository) SetStatusForRecord(ctx context.Context, recordID primitive.ObjectID, status string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx,
		bson.M{"record_id": recordID, "status": bson.M{"$ne": status}},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
