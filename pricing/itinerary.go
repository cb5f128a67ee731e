package pricing

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"wayfare/models"
)

// PriceProvider returns nightly hotel prices for one destination. It is
// read-only and may return an empty table.
type PriceProvider interface {
	GetPrices(ctx context.Context, destinationID int, areaID *int, dates models.DateRange, guests models.GuestConfig, currency string) ([]models.HotelPriceData, error)
}

// Stats counts the price lookups made while pricing one itinerary.
type Stats struct {
	HotelsSearched int
	PriceQueries   int
}

func (s *Stats) Add(o Stats) {
	s.HotelsSearched += o.HotelsSearched
	s.PriceQueries += o.PriceQueries
}

// Service prices whole itineraries against a PriceProvider.
type Service struct {
	Provider PriceProvider
	// Workers bounds concurrent price fetches per itinerary; zero means one per stop.
	Workers int
}

func NewService(p PriceProvider, workers int) *Service {
	return &Service{Provider: p, Workers: workers}
}

// OptimizeCompleteItinerary fetches prices and optimizes every stop of the
// assignment concurrently. Stops whose price fetch fails or that have no
// hotel plan are absent from the returned map; the caller decides whether
// the itinerary survives. The error is non-nil only when ctx ends.
func (s *Service) OptimizeCompleteItinerary(
	ctx context.Context,
	assignment models.ConsecutiveAssignment,
	guests models.GuestConfig,
	currency string,
	preferred []int,
	hotelChange bool,
) (map[models.DestinationKey]*models.DestinationHotelSolution, Stats, error) {
	type stopResult struct {
		sol   *models.DestinationHotelSolution
		stats Stats
	}
	results := make([]stopResult, len(assignment.Stops))

	g, gctx := errgroup.WithContext(ctx)
	if s.Workers > 0 {
		g.SetLimit(s.Workers)
	}
	for i, stop := range assignment.Stops {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sol, st := s.optimizeStop(gctx, stop, guests, currency, preferred, hotelChange)
			results[i] = stopResult{sol: sol, stats: st}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, fmt.Errorf("pricing itinerary %s..%s: %w", assignment.StartDate, assignment.EndDate, err)
	}

	var stats Stats
	out := make(map[models.DestinationKey]*models.DestinationHotelSolution, len(results))
	for i, r := range results {
		stats.Add(r.stats)
		if r.sol != nil {
			out[assignment.Stops[i].Key()] = r.sol
		}
	}
	return out, stats, nil
}

func (s *Service) optimizeStop(ctx context.Context, stop models.Stop, guests models.GuestConfig, currency string, preferred []int, hotelChange bool) (*models.DestinationHotelSolution, Stats) {
	window := models.DateRange{Start: stop.StartDate, End: stop.EndDate}
	table, err := s.Provider.GetPrices(ctx, stop.DestinationID, stop.AreaID, window, guests, currency)
	stats := Stats{PriceQueries: 1, HotelsSearched: len(table)}
	if err != nil {
		log.Printf("[pricing] %s: price lookup for destination %d failed: %v", models.ErrorTypeExternal, stop.DestinationID, err)
		return nil, stats
	}
	if len(table) == 0 {
		log.Printf("[pricing] destination %d: no hotels priced for %s..%s", stop.DestinationID, window.Start, window.End)
		return nil, stats
	}

	sol, ok := OptimizeDestination(Input{
		DestinationID: stop.DestinationID,
		AreaID:        stop.AreaID,
		Dates:         stop.Dates(),
		Table:         table,
		Policy:        Policy{Preferred: preferred, HotelChange: hotelChange},
	})
	if !ok {
		log.Printf("[pricing] %s: destination %d %s..%s: %v", models.ErrorTypeComputation, stop.DestinationID, window.Start, window.End, ErrNoSolution)
		return nil, stats
	}
	return sol, stats
}

// CalculateTotalItineraryCost sums the solutions of an itinerary. Prices in
// different currencies are added as-is and flagged through mixed; no
// conversion is ever applied. The currency defaults to USD when there are
// no solutions.
func CalculateTotalItineraryCost(solutions []*models.DestinationHotelSolution) (total float64, currency string, mixed bool) {
	for _, sol := range solutions {
		if sol == nil {
			continue
		}
		total += sol.TotalCost
		switch {
		case currency == "":
			currency = sol.Currency
		case sol.Currency != currency:
			mixed = true
		}
	}
	if mixed {
		log.Printf("[pricing] mixed currencies in itinerary, total %.2f reported in %s without conversion", total, currency)
	}
	if currency == "" {
		currency = "USD"
	}
	return total, currency, mixed
}

// Statistics summarises a priced itinerary.
type Statistics struct {
	TotalCost               float64 `json:"total_cost"`
	Currency                string  `json:"currency"`
	MixedCurrency           bool    `json:"mixed_currency"`
	Destinations            int     `json:"destinations"`
	SingleHotelDestinations int     `json:"single_hotel_destinations"`
	HotelsUsed              int     `json:"hotels_used"`
	TotalNights             int     `json:"total_nights"`
	AveragePerNight         float64 `json:"average_per_night"`
	SingleHotelPercentage   float64 `json:"single_hotel_percentage"`
}

func ItineraryStatistics(solutions []*models.DestinationHotelSolution) Statistics {
	st := Statistics{}
	st.TotalCost, st.Currency, st.MixedCurrency = CalculateTotalItineraryCost(solutions)

	hotels := make(map[int]struct{})
	for _, sol := range solutions {
		if sol == nil {
			continue
		}
		st.Destinations++
		if sol.SingleHotel {
			st.SingleHotelDestinations++
		}
		st.TotalNights += len(sol.Assignments)
		for _, a := range sol.Assignments {
			hotels[a.HotelID] = struct{}{}
		}
	}
	st.HotelsUsed = len(hotels)
	if st.TotalNights > 0 {
		st.AveragePerNight = st.TotalCost / float64(st.TotalNights)
	}
	if st.Destinations > 0 {
		st.SingleHotelPercentage = float64(st.SingleHotelDestinations) / float64(st.Destinations) * 100
	}
	return st
}
