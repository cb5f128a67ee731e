package prices

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wayfare/models"
)

// MongoProvider reads hotels and their recorded nightly prices from MongoDB.
type MongoProvider struct {
	hotels *mongo.Collection
	prices *mongo.Collection
	cfg    Config
}

func NewMongoProvider(hotels, priceHistory *mongo.Collection, cfg Config) *MongoProvider {
	return &MongoProvider{hotels: hotels, prices: priceHistory, cfg: cfg.withDefaults()}
}

// EnsureIndexes creates the indexes the provider queries rely on.
func (p *MongoProvider) EnsureIndexes(ctx context.Context) error {
	_, err := p.hotels.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "destination_id", Value: 1}, {Key: "area_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("destination_area_active"),
		},
		{
			Keys:    bson.M{"hotel_id": 1},
			Options: options.Index().SetUnique(true).SetName("unique_hotel_id"),
		},
	})
	if err != nil {
		return fmt.Errorf("hotel indexes: %w", err)
	}
	_, err = p.prices.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "hotel_id", Value: 1}, {Key: "price_date", Value: 1}, {Key: "recorded_at", Value: -1}},
		Options: options.Index().SetName("hotel_date_recorded"),
	})
	if err != nil {
		return fmt.Errorf("price history indexes: %w", err)
	}
	return nil
}

func (p *MongoProvider) GetPrices(ctx context.Context, destinationID int, areaID *int, dates models.DateRange, guests models.GuestConfig, currency string) ([]models.HotelPriceData, error) {
	if currency == "" {
		currency = p.cfg.DefaultCurrency
	}
	if guests.Adults <= 0 {
		guests.Adults = p.cfg.DefaultAdults
	}

	hotels, err := p.findHotels(ctx, destinationID, areaID)
	if err != nil {
		return nil, err
	}
	if len(hotels) == 0 {
		log.Printf("[prices] no hotels for destination %d area %v", destinationID, areaID)
		return nil, nil
	}

	ids := make([]int, len(hotels))
	for i, h := range hotels {
		ids[i] = h.HotelID
	}
	filter := bson.M{
		"hotel_id":     bson.M{"$in": ids},
		"price_date":   bson.M{"$gte": dates.Start.String(), "$lte": dates.End.String()},
		"currency":     currency,
		"is_available": true,
	}
	cursor, err := p.prices.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "recorded_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find prices for destination %d: %w", destinationID, err)
	}
	defer cursor.Close(ctx)

	var records []models.PriceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode prices for destination %d: %w", destinationID, err)
	}

	table := BuildTable(hotels, records, currency)
	log.Printf("[prices] destination %d %s..%s: %d of %d hotels priced (%d adults)",
		destinationID, dates.Start, dates.End, len(table), len(hotels), guests.Adults)
	return table, nil
}

// findHotels pages through active hotels until MaxPages pages or MaxHotels
// hotels have been read.
func (p *MongoProvider) findHotels(ctx context.Context, destinationID int, areaID *int) ([]models.Hotel, error) {
	filter := bson.M{
		"destination_id": destinationID,
		"is_active":      true,
	}
	if areaID != nil {
		filter["area_id"] = *areaID
	}
	if p.cfg.MinStars > 0 {
		filter["stars"] = bson.M{"$gte": p.cfg.MinStars}
	}
	if p.cfg.MinGuestRating > 0 {
		filter["guest_rating"] = bson.M{"$gte": p.cfg.MinGuestRating}
	}

	var hotels []models.Hotel
	for page := 0; page < p.cfg.MaxPages && len(hotels) < p.cfg.MaxHotels; page++ {
		limit := min(p.cfg.PageSize, p.cfg.MaxHotels-len(hotels))
		findOptions := options.Find().
			SetSkip(int64(page * p.cfg.PageSize)).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "hotel_id", Value: 1}})

		cursor, err := p.hotels.Find(ctx, filter, findOptions)
		if err != nil {
			return nil, fmt.Errorf("find hotels for destination %d: %w", destinationID, err)
		}
		var batch []models.Hotel
		err = cursor.All(ctx, &batch)
		cursor.Close(ctx)
		if err != nil {
			return nil, fmt.Errorf("decode hotels for destination %d: %w", destinationID, err)
		}
		hotels = append(hotels, batch...)
		if len(batch) < limit {
			break
		}
	}
	return hotels, nil
}
