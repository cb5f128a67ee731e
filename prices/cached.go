package prices

import (
	"context"
	"fmt"
	"log"
	"time"

	"wayfare/models"
	"wayfare/pricing"
	"wayfare/rdx"
)

// DefaultPriceTTL is how long a fetched price table stays in Redis.
const DefaultPriceTTL = 10 * time.Minute

// Cached is a read-through Redis cache in front of a provider. Redis
// failures fall through to the provider.
type Cached struct {
	next  pricing.PriceProvider
	cache *rdx.Cache
	ttl   time.Duration
}

func NewCached(next pricing.PriceProvider, cache *rdx.Cache, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultPriceTTL
	}
	return &Cached{next: next, cache: cache, ttl: ttl}
}

// PriceKey identifies a price table by everything that can change it.
func PriceKey(destinationID int, areaID *int, dates models.DateRange, guests models.GuestConfig, currency string) string {
	area := 0
	if areaID != nil {
		area = *areaID
	}
	return fmt.Sprintf("%s%d:%d:%s:%s:%d:%d:%s", rdx.PriceKeyPrefix,
		destinationID, area, dates.Start, dates.End, guests.Adults, guests.Children, currency)
}

func (c *Cached) GetPrices(ctx context.Context, destinationID int, areaID *int, dates models.DateRange, guests models.GuestConfig, currency string) ([]models.HotelPriceData, error) {
	key := PriceKey(destinationID, areaID, dates, guests, currency)

	var table []models.HotelPriceData
	found, err := c.cache.GetJSON(ctx, key, &table)
	if err != nil {
		log.Printf("[prices] cache read %s: %v", key, err)
	} else if found {
		return table, nil
	}

	table, err = c.next.GetPrices(ctx, destinationID, areaID, dates, guests, currency)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, key, table, c.ttl); err != nil {
		log.Printf("[prices] cache write %s: %v", key, err)
	}
	return table, nil
}
