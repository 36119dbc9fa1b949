package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sync directions recorded in the audit trail.
const (
	SyncInbound  = "app_to_wp"
	SyncOutbound = "wp_to_app"
)

type SyncEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Direction string             `bson:"direction" json:"direction"`
	Email     string             `bson:"email" json:"email"`
	Action    string             `bson:"action" json:"action"` // "created", "already_exists", "synced", "failed"
	Detail    string             `bson:"detail,omitempty" json:"detail,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

type ImportRunRecord struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Total              int                `bson:"total" json:"total"`
	Imported           int                `bson:"imported" json:"imported"`
	Skipped            int                `bson:"skipped" json:"skipped"`
	Errors             int                `bson:"errors" json:"errors"`
	EnrollmentsCreated int                `bson:"enrollments_created" json:"enrollments_created"`
	ErrorDetails       []string           `bson:"error_details,omitempty" json:"error_details,omitempty"`
	Timestamp          time.Time          `bson:"timestamp" json:"timestamp"`
}

// Audit keeps a queryable record of sync events and import runs in MongoDB.
// All writes are best-effort; a nil Audit (Mongo not configured) is a no-op.
type Audit struct {
	db *mongo.Database
}

func NewAudit(db *mongo.Database) *Audit {
	return &Audit{db: db}
}

// EnsureAuditIndexes configures indexes for the audit collections.
// Called on startup from main after Mongo has connected.
func (a *Audit) EnsureAuditIndexes(ctx context.Context) error {
	if a == nil || a.db == nil {
		return nil
	}

	col := a.db.Collection("sync_events")
	model := mongo.IndexModel{
		Keys: bson.D{
			{Key: "email", Value: 1},
			{Key: "timestamp", Value: -1},
		},
		Options: options.Index().SetName("idx_email_timestamp"),
	}
	if _, err := col.Indexes().CreateOne(ctx, model); err != nil {
		return err
	}

	runs := a.db.Collection("import_runs")
	runModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("idx_timestamp"),
	}
	_, err := runs.Indexes().CreateOne(ctx, runModel)
	return err
}

// RecordSyncEvent persists a sync event asynchronously.
// The caller should NOT block on this; fire-and-forget is acceptable.
func (a *Audit) RecordSyncEvent(ev SyncEvent) {
	if a == nil || a.db == nil {
		return
	}
	go func(e SyncEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if e.Timestamp.IsZero() {
			e.Timestamp = time.Now().UTC()
		}
		_, _ = a.db.Collection("sync_events").InsertOne(ctx, e)
	}(ev)
}

// RecordImportRun persists the summary of a completed import run.
func (a *Audit) RecordImportRun(ctx context.Context, results ImportResults) error {
	if a == nil || a.db == nil {
		return nil
	}
	rec := ImportRunRecord{
		Total:              results.Total,
		Imported:           results.Imported,
		Skipped:            results.Skipped,
		Errors:             results.Errors,
		EnrollmentsCreated: results.EnrollmentsCreated,
		ErrorDetails:       results.ErrorDetails,
		Timestamp:          time.Now().UTC(),
	}
	_, err := a.db.Collection("import_runs").InsertOne(ctx, rec)
	return err
}

// RecentSyncEvents returns the newest sync events, newest first.
func (a *Audit) RecentSyncEvents(ctx context.Context, limit int64) ([]SyncEvent, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := a.db.Collection("sync_events").Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []SyncEvent
	for cur.Next(ctx) {
		var ev SyncEvent
		if err := cur.Decode(&ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, cur.Err()
}
