package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"wayfare/models"
)

// HistoryChannel carries optimization history records to the worker.
const HistoryChannel = "itinerary-history"

// Emitter publishes history records to Redis so the request path never
// waits on MongoDB.
type Emitter struct {
	client *redis.Client
}

func NewEmitter(client *redis.Client) *Emitter {
	return &Emitter{client: client}
}

// Record publishes rec on HistoryChannel.
func (e *Emitter) Record(ctx context.Context, rec models.HistoryRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal history record: %w", err)
	}
	if err := e.client.Publish(ctx, HistoryChannel, data).Err(); err != nil {
		return fmt.Errorf("publish history record: %w", err)
	}
	log.Printf("[Emit] history %s published to %q", rec.RequestHash, HistoryChannel)
	return nil
}

// Saver persists history records.
type Saver interface {
	Save(ctx context.Context, rec models.HistoryRecord) error
}

// StartHistoryWorker subscribes to HistoryChannel and saves every record it
// receives until ctx is done.
func StartHistoryWorker(ctx context.Context, client *redis.Client, store Saver) error {
	sub := client.Subscribe(ctx, HistoryChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", HistoryChannel, err)
	}
	ch := sub.Channel()

	log.Println("[HistoryWorker] Listening for history records...")
	for {
		select {
		case <-ctx.Done():
			log.Println("[HistoryWorker] Stopped")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var rec models.HistoryRecord
			if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
				log.Printf("[HistoryWorker] Failed to parse record: %v", err)
				continue
			}
			if err := store.Save(ctx, rec); err != nil {
				log.Printf("[HistoryWorker] Save %s error: %v", rec.RequestHash, err)
				continue
			}
			log.Printf("[HistoryWorker] Saved history %s", rec.RequestHash)
		}
	}
}
