package prices

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"wayfare/models"
	"wayfare/pricing"
)

// Throttled limits how fast price lookups reach the wrapped provider.
type Throttled struct {
	next    pricing.PriceProvider
	limiter *rate.Limiter
}

// NewThrottled allows rps lookups per second with bursts of burst.
func NewThrottled(next pricing.PriceProvider, rps float64, burst int) *Throttled {
	if burst < 1 {
		burst = 1
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (t *Throttled) GetPrices(ctx context.Context, destinationID int, areaID *int, dates models.DateRange, guests models.GuestConfig, currency string) ([]models.HotelPriceData, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("price lookup throttled: %w", err)
	}
	return t.next.GetPrices(ctx, destinationID, areaID, dates, guests, currency)
}
