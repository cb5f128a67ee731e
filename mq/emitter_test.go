package mq_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfare/models"
	"wayfare/mq"
)

type memSaver struct {
	mu   sync.Mutex
	recs []models.HistoryRecord
}

func (m *memSaver) Save(_ context.Context, rec models.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memSaver) all() []models.HistoryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.HistoryRecord(nil), m.recs...)
}

func TestHistoryWorkerSavesPublishedRecords(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	saver := &memSaver{}
	done := make(chan error, 1)
	go func() { done <- mq.StartHistoryWorker(ctx, client, saver) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(mq.HistoryChannel)[mq.HistoryChannel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	best := 420.0
	emitter := mq.NewEmitter(client)
	require.NoError(t, emitter.Record(context.Background(), models.HistoryRecord{
		RequestHash:          "f00d",
		SearchTypes:          []string{"normal", "ranges"},
		ItinerariesGenerated: 5,
		BestCost:             &best,
		Currency:             "USD",
	}))

	require.Eventually(t, func() bool { return len(saver.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := saver.all()[0]
	assert.Equal(t, "f00d", got.RequestHash)
	assert.Equal(t, []string{"normal", "ranges"}, got.SearchTypes)
	require.NotNil(t, got.BestCost)
	assert.Equal(t, 420.0, *got.BestCost)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestEmitterFailsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err := mq.NewEmitter(client).Record(context.Background(), models.HistoryRecord{RequestHash: "x"})
	assert.Error(t, err)
}
