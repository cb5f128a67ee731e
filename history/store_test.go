package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"wayfare/history"
	"wayfare/models"
)

func TestStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		store := history.NewStore(mt.Coll)
		err := store.Save(context.Background(), models.HistoryRecord{RequestHash: "abc", SearchTypes: []string{"normal"}})
		require.NoError(mt, err)
	})

	mt.Run("save rejects empty hash", func(mt *mtest.T) {
		store := history.NewStore(mt.Coll)
		assert.ErrorIs(mt, store.Save(context.Background(), models.HistoryRecord{}), history.ErrInvalidRecord)
	})

	mt.Run("save surfaces write errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		store := history.NewStore(mt.Coll)
		err := store.Save(context.Background(), models.HistoryRecord{ID: "r1", RequestHash: "abc"})
		assert.Error(mt, err)
	})

	mt.Run("list by user", func(mt *mtest.T) {
		created := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		first := mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "id", Value: "r2"},
				{Key: "request_hash", Value: "h2"},
				{Key: "user_id", Value: "u1"},
				{Key: "itineraries_generated", Value: 4},
				{Key: "best_cost", Value: 812.5},
				{Key: "created_at", Value: created},
			},
			bson.D{
				{Key: "id", Value: "r1"},
				{Key: "request_hash", Value: "h1"},
				{Key: "user_id", Value: "u1"},
				{Key: "cache_hit", Value: true},
				{Key: "created_at", Value: created.Add(-time.Hour)},
			},
		)
		mt.AddMockResponses(first)

		store := history.NewStore(mt.Coll)
		got, err := store.ListByUser(context.Background(), "u1", 10)
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "h2", got[0].RequestHash)
		require.NotNil(mt, got[0].BestCost)
		assert.Equal(mt, 812.5, *got[0].BestCost)
		assert.Nil(mt, got[1].BestCost)
		assert.True(mt, got[1].CacheHit)
	})

	mt.Run("init indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, history.NewStore(mt.Coll).InitIndexes(context.Background()))
	})
}
