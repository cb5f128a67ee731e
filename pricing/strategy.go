// Package pricing picks hotels for each stop of an itinerary.
//
// Strategies are plain functions over the same Input; OptimizeDestination
// chooses among their results according to the request policy.
package pricing

import (
	"errors"
	"log"
	"slices"

	"wayfare/models"
)

// ErrNoSolution means no hotel plan covers every night of a stop.
var ErrNoSolution = errors.New("pricing: no hotel covers every required date")

// Strategy names one hotel selection algorithm.
type Strategy int

const (
	StrategySingleHotel Strategy = iota
	StrategyCheapestDaily
	StrategyPreferredFirst
	StrategyBlockSwitch
)

func (s Strategy) String() string {
	switch s {
	case StrategySingleHotel:
		return "single_hotel"
	case StrategyCheapestDaily:
		return "cheapest_daily"
	case StrategyPreferredFirst:
		return "preferred_first"
	case StrategyBlockSwitch:
		return "block_switch"
	}
	return "unknown"
}

// Cost weights used by the block switching strategy and the final choice.
const (
	SwitchPenalty       = 1.01
	PreferredBonus      = 0.95
	ContinuityTolerance = 1.15
)

// Policy is the caller's hotel preference.
type Policy struct {
	Preferred   []int
	HotelChange bool
}

func (p Policy) prefers(hotelID int) bool {
	return slices.Contains(p.Preferred, hotelID)
}

// Input is what every strategy consumes.
type Input struct {
	DestinationID int
	AreaID        *int
	Dates         []models.Date
	Table         []models.HotelPriceData
	Policy        Policy
}

// Run dispatches to the selected strategy.
func Run(s Strategy, in Input) (*models.DestinationHotelSolution, bool) {
	if len(in.Dates) == 0 || len(in.Table) == 0 {
		return nil, false
	}
	switch s {
	case StrategySingleHotel:
		return singleHotel(in, in.Table)
	case StrategyCheapestDaily:
		return cheapestDaily(in)
	case StrategyPreferredFirst:
		return preferredFirst(in)
	case StrategyBlockSwitch:
		return blockSwitch(in)
	}
	return nil, false
}

// singleHotel returns the cheapest hotel that prices every date, ties going
// to the lowest hotel id.
func singleHotel(in Input, table []models.HotelPriceData) (*models.DestinationHotelSolution, bool) {
	var best *models.HotelPriceData
	bestCost := 0.0
	for i := range table {
		h := &table[i]
		if !h.Covers(in.Dates) {
			continue
		}
		cost := blockCost(h, in.Dates)
		if best == nil || cost < bestCost || (cost == bestCost && h.HotelID < best.HotelID) {
			best, bestCost = h, cost
		}
	}
	if best == nil {
		return nil, false
	}
	assignments := make([]models.HotelAssignment, 0, len(in.Dates))
	for _, d := range in.Dates {
		assignments = append(assignments, assign(best, d, models.ReasonSingleHotel))
	}
	return newSolution(in, assignments, StrategySingleHotel), true
}

func preferredFirst(in Input) (*models.DestinationHotelSolution, bool) {
	if len(in.Policy.Preferred) > 0 {
		var preferred []models.HotelPriceData
		for _, h := range in.Table {
			if in.Policy.prefers(h.HotelID) {
				preferred = append(preferred, h)
			}
		}
		if sol, ok := singleHotel(in, preferred); ok {
			sol.Strategy = StrategyPreferredFirst.String()
			return sol, true
		}
	}
	return singleHotel(in, in.Table)
}

// cheapestDaily picks the cheapest hotel independently for each date.
func cheapestDaily(in Input) (*models.DestinationHotelSolution, bool) {
	assignments := make([]models.HotelAssignment, 0, len(in.Dates))
	for _, d := range in.Dates {
		var best *models.HotelPriceData
		bestPrice := 0.0
		for i := range in.Table {
			h := &in.Table[i]
			p, ok := h.PriceOn(d)
			if !ok {
				continue
			}
			if best == nil || p < bestPrice || (p == bestPrice && h.HotelID < best.HotelID) {
				best, bestPrice = h, p
			}
		}
		if best == nil {
			log.Printf("[pricing] destination %d: no hotel available on %s", in.DestinationID, d)
			return nil, false
		}
		assignments = append(assignments, assign(best, d, models.ReasonCheapestDay))
	}
	return newSolution(in, assignments, StrategyCheapestDaily), true
}

// blockSwitch splits the stay at its midpoint and tries every pair of hotels
// covering the two halves. Pairs are ranked on an adjusted cost (switch
// penalty, preferred bonus) but the solution reports the real price.
func blockSwitch(in Input) (*models.DestinationHotelSolution, bool) {
	if len(in.Dates) < 2 {
		return nil, false
	}
	mid := len(in.Dates) / 2
	first, second := in.Dates[:mid], in.Dates[mid:]

	var firstCover, secondCover []*models.HotelPriceData
	for i := range in.Table {
		h := &in.Table[i]
		if h.Covers(first) {
			firstCover = append(firstCover, h)
		}
		if h.Covers(second) {
			secondCover = append(secondCover, h)
		}
	}

	var bestA, bestB *models.HotelPriceData
	bestAdjusted := 0.0
	for _, a := range firstCover {
		costA := blockCost(a, first)
		if in.Policy.prefers(a.HotelID) {
			costA *= PreferredBonus
		}
		for _, b := range secondCover {
			costB := blockCost(b, second)
			if in.Policy.prefers(b.HotelID) {
				costB *= PreferredBonus
			}
			adjusted := costA + costB
			if a.HotelID != b.HotelID {
				adjusted *= SwitchPenalty
			}
			if bestA == nil || adjusted < bestAdjusted {
				bestA, bestB, bestAdjusted = a, b, adjusted
			}
		}
	}
	if bestA == nil {
		return nil, false
	}

	assignments := make([]models.HotelAssignment, 0, len(in.Dates))
	for _, d := range first {
		assignments = append(assignments, assign(bestA, d, blockReason(in.Policy, bestA.HotelID)))
	}
	for _, d := range second {
		assignments = append(assignments, assign(bestB, d, blockReason(in.Policy, bestB.HotelID)))
	}
	return newSolution(in, assignments, StrategyBlockSwitch), true
}

func blockReason(p Policy, hotelID int) string {
	if p.prefers(hotelID) {
		return models.ReasonPreferredBlock
	}
	return models.ReasonCostBlock
}

func blockCost(h *models.HotelPriceData, dates []models.Date) float64 {
	total := 0.0
	for _, d := range dates {
		p, _ := h.PriceOn(d)
		total += p
	}
	return total
}

func assign(h *models.HotelPriceData, d models.Date, reason string) models.HotelAssignment {
	p, _ := h.PriceOn(d)
	return models.HotelAssignment{
		HotelID:         h.HotelID,
		HotelName:       h.HotelName,
		Date:            d,
		Price:           p,
		Currency:        h.Currency,
		SelectionReason: reason,
	}
}

// newSolution totals the assignments; TotalCost is always their exact sum.
func newSolution(in Input, assignments []models.HotelAssignment, s Strategy) *models.DestinationHotelSolution {
	hotels := make(map[int]struct{})
	total := 0.0
	for _, a := range assignments {
		total += a.Price
		hotels[a.HotelID] = struct{}{}
	}
	sol := &models.DestinationHotelSolution{
		DestinationID: in.DestinationID,
		AreaID:        in.AreaID,
		StartDate:     in.Dates[0],
		EndDate:       in.Dates[len(in.Dates)-1],
		Assignments:   assignments,
		TotalCost:     total,
		SingleHotel:   len(hotels) == 1,
		HotelsCount:   len(hotels),
		Strategy:      s.String(),
	}
	if len(assignments) > 0 {
		sol.Currency = assignments[0].Currency
	}
	return sol
}
