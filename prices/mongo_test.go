package prices_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"wayfare/models"
	"wayfare/prices"
)

func TestMongoProvider(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	window := models.DateRange{Start: models.MustDate("2026-05-01"), End: models.MustDate("2026-05-02")}
	older := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	mt.Run("joins hotels with their latest prices", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{{Key: "hotel_id", Value: 1}, {Key: "name", Value: "Harbour"}, {Key: "destination_id", Value: 7}, {Key: "stars", Value: 4.0}, {Key: "is_active", Value: true}},
				bson.D{{Key: "hotel_id", Value: 2}, {Key: "name", Value: "Dunes"}, {Key: "destination_id", Value: 7}, {Key: "stars", Value: 3.5}, {Key: "is_active", Value: true}},
			),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{{Key: "hotel_id", Value: 1}, {Key: "price_date", Value: "2026-05-01"}, {Key: "price", Value: 100.0}, {Key: "currency", Value: "USD"}, {Key: "is_available", Value: true}, {Key: "recorded_at", Value: newer}},
				bson.D{{Key: "hotel_id", Value: 1}, {Key: "price_date", Value: "2026-05-02"}, {Key: "price", Value: 90.0}, {Key: "currency", Value: "USD"}, {Key: "is_available", Value: true}, {Key: "recorded_at", Value: newer}},
				bson.D{{Key: "hotel_id", Value: 1}, {Key: "price_date", Value: "2026-05-01"}, {Key: "price", Value: 120.0}, {Key: "currency", Value: "USD"}, {Key: "is_available", Value: true}, {Key: "recorded_at", Value: older}},
			),
		)

		p := prices.NewMongoProvider(mt.Coll, mt.Coll, prices.DefaultConfig())
		table, err := p.GetPrices(context.Background(), 7, nil, window, models.GuestConfig{}, "USD")
		require.NoError(mt, err)
		require.Len(mt, table, 1, "hotels without prices are left out")
		assert.Equal(mt, "Harbour", table[0].HotelName)
		assert.Equal(mt, 100.0, table[0].Prices["2026-05-01"])
		assert.Equal(mt, 90.0, table[0].Prices["2026-05-02"])
		assert.Len(mt, table[0].AvailableDates, 2)
	})

	mt.Run("no hotels", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		p := prices.NewMongoProvider(mt.Coll, mt.Coll, prices.DefaultConfig())
		table, err := p.GetPrices(context.Background(), 7, nil, window, models.GuestConfig{}, "USD")
		require.NoError(mt, err)
		assert.Empty(mt, table)
	})

	mt.Run("query failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad filter"}))

		p := prices.NewMongoProvider(mt.Coll, mt.Coll, prices.DefaultConfig())
		_, err := p.GetPrices(context.Background(), 7, nil, window, models.GuestConfig{}, "USD")
		assert.ErrorContains(mt, err, "find hotels for destination 7")
	})
}
