package pricing

import (
	"log"

	"wayfare/models"
)

// continuityOrder lists the strategies tried when hotel changes are allowed,
// from fewest hotel switches to most.
var continuityOrder = []Strategy{StrategyPreferredFirst, StrategyBlockSwitch, StrategyCheapestDaily}

// OptimizeDestination returns the hotel plan for one stop under the request
// policy, or false when no plan covers every date.
//
// Without hotel changes the stay goes to one hotel (preferred hotels first).
// If no single hotel covers the stay the cheapest per-night plan is used,
// since nothing else can house the guests. With hotel changes allowed every
// strategy runs and the most continuous candidate whose cost is within
// ContinuityTolerance of the cheapest one wins.
func OptimizeDestination(in Input) (*models.DestinationHotelSolution, bool) {
	if !in.Policy.HotelChange {
		if sol, ok := Run(StrategyPreferredFirst, in); ok {
			sol.Alternatives = 1
			return sol, true
		}
		sol, ok := Run(StrategyCheapestDaily, in)
		if !ok {
			return nil, false
		}
		log.Printf("[pricing] destination %d: no single hotel covers %s..%s, splitting by night",
			in.DestinationID, sol.StartDate, sol.EndDate)
		sol.Alternatives = 1
		return sol, true
	}

	var candidates []*models.DestinationHotelSolution
	for _, s := range continuityOrder {
		if sol, ok := Run(s, in); ok {
			candidates = append(candidates, sol)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}

	cheapest := candidates[0].TotalCost
	for _, c := range candidates[1:] {
		cheapest = min(cheapest, c.TotalCost)
	}
	for _, c := range candidates {
		if c.TotalCost <= cheapest*ContinuityTolerance {
			c.Alternatives = len(candidates)
			return c, true
		}
	}
	// unreachable: the cheapest candidate always qualifies
	return nil, false
}
