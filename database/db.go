package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"kyc-hub/config"
)

// Collection names
const (
	UsersCollection     = "users"
	RecordsCollection   = "records"
	ArchiveCollection   = "permanent_records"
	AlertsCollection    = "fraud_alerts"
	AuditCollection     = "audit_logs"
	HashesCollection    = "document_hashes"
	BlacklistCollection = "blacklisted_aadhaars"
)

const (
	defaultQueryTimeout   = 5 * time.Second
	defaultConnectTimeout = 10 * time.Second
)

// DB wraps the MongoDB client and the application database
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
	timeout  time.Duration
	log      *zap.Logger
}

// Connect opens the connection and pings the server
func Connect(ctx context.Context, cfg config.MongoConfig, log *zap.Logger) (*DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("Connected to MongoDB", zap.String("database", cfg.Database))
	return &DB{
		Client:   client,
		Database: client.Database(cfg.Database),
		timeout:  defaultQueryTimeout,
		log:      log,
	}, nil
}

func (d *DB) Disconnect(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := d.Client.Disconnect(ctx); err != nil {
		d.log.Error("Failed to disconnect MongoDB", zap.Error(err))
		return
	}
	d.log.Info("Disconnected from MongoDB")
}

func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.Client.Ping(ctx, nil)
}

// Collection returns the named collection of the application database
func (d *DB) Collection(name string) *mongo.Collection {
	return d.Database.Collection(name)
}

// EnsureIndexes creates the indexes the repositories rely on
func (d *DB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for name, models := range indexes() {
		if _, err := d.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "is_verified", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		RecordsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "extracted_fields.aadhaar_number", Value: 1}}},
			{Keys: bson.D{{Key: "extracted_fields.pan_number", Value: 1}}},
			{Keys: bson.D{{Key: "extracted_fields.address", Value: 1}}},
		},
		HashesCollection: {
			{Keys: bson.D{{Key: "hash", Value: 1}}},
		},
		BlacklistCollection: {
			{Keys: bson.D{{Key: "aadhaar_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		AlertsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "record_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		AuditCollection: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
	}
}
