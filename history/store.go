// Package history keeps the analytics trail of optimization requests.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wayfare/models"
)

// Retention is how long history records are kept before Mongo expires them.
const Retention = 90 * 24 * time.Hour

var ErrInvalidRecord = errors.New("history: record has no request hash")

// Store persists HistoryRecords in one Mongo collection.
type Store struct {
	coll *mongo.Collection
}

func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// InitIndexes creates the lookup indexes and the retention TTL index.
func (s *Store) InitIndexes(ctx context.Context) error {
	idxs := []mongo.IndexModel{
		{
			Keys:    bson.M{"id": 1},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_recent"),
		},
		{
			Keys:    bson.M{"request_hash": 1},
			Options: options.Index().SetName("request_hash"),
		},
		{
			Keys:    bson.M{"created_at": 1},
			Options: options.Index().SetExpireAfterSeconds(int32(Retention.Seconds())).SetName("ttl_created_at"),
		},
	}
	_, err := s.coll.Indexes().CreateMany(ctx, idxs)
	return err
}

// Save upserts rec by id, assigning an id and timestamp when missing.
func (s *Store) Save(ctx context.Context, rec models.HistoryRecord) error {
	if rec.RequestHash == "" {
		return ErrInvalidRecord
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save history %s: %w", rec.ID, err)
	}
	return nil
}

// Record implements the orchestrator's history sink with a direct write.
func (s *Store) Record(ctx context.Context, rec models.HistoryRecord) error {
	return s.Save(ctx, rec)
}

// ListByUser returns the user's most recent records, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]models.HistoryRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("list history for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	records := []models.HistoryRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode history for %s: %w", userID, err)
	}
	return records, nil
}
