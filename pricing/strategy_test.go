package pricing_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfare/models"
	"wayfare/pricing"
)

func nights(start string, n int) []models.Date {
	d := models.MustDate(start)
	out := make([]models.Date, n)
	for i := range out {
		out[i] = d.AddDays(i)
	}
	return out
}

// hotel builds a price row; a negative price leaves that night unavailable.
func hotel(id int, dates []models.Date, prices ...float64) models.HotelPriceData {
	h := models.HotelPriceData{HotelID: id, HotelName: "Hotel " + string(rune('A'+id%26)), Currency: "USD", Prices: map[string]float64{}}
	for i, p := range prices {
		if p < 0 {
			continue
		}
		h.Prices[dates[i].String()] = p
		h.AvailableDates = append(h.AvailableDates, dates[i])
	}
	return h
}

func sum(sol *models.DestinationHotelSolution) float64 {
	total := 0.0
	for _, a := range sol.Assignments {
		total += a.Price
	}
	return total
}

// Scenario B: X covers all three nights for 270; Y (night 1, 70) plus Z
// (nights 2-3, 120) costs 190 and must win when hotel changes are allowed.
func TestOptimizeDestination_ScenarioB(t *testing.T) {
	dates := nights("2026-05-01", 3)
	in := pricing.Input{
		DestinationID: 1,
		Dates:         dates,
		Table: []models.HotelPriceData{
			hotel(1, dates, 100, 90, 80),
			hotel(2, dates, 70, -1, -1),
			hotel(3, dates, -1, 60, 60),
		},
		Policy: pricing.Policy{HotelChange: true},
	}

	sol, ok := pricing.OptimizeDestination(in)
	require.True(t, ok)
	assert.Equal(t, "block_switch", sol.Strategy)
	assert.Equal(t, 190.0, sol.TotalCost)
	assert.Equal(t, 2, sol.HotelsCount)
	assert.False(t, sol.SingleHotel)
	assert.Equal(t, 3, sol.Alternatives)
	require.Len(t, sol.Assignments, 3)
	assert.Equal(t, 2, sol.Assignments[0].HotelID)
	assert.Equal(t, 3, sol.Assignments[1].HotelID)
	assert.Equal(t, 3, sol.Assignments[2].HotelID)
	assert.Equal(t, models.ReasonCostBlock, sol.Assignments[0].SelectionReason)

	in.Policy.HotelChange = false
	sol, ok = pricing.OptimizeDestination(in)
	require.True(t, ok)
	assert.True(t, sol.SingleHotel)
	assert.Equal(t, 270.0, sol.TotalCost)
	assert.Equal(t, 1, sol.Assignments[0].HotelID)
}

func TestOptimizeDestination_ContinuityWithinTolerance(t *testing.T) {
	dates := nights("2026-05-01", 2)
	in := pricing.Input{
		Dates: dates,
		Table: []models.HotelPriceData{
			hotel(1, dates, 55, 55),
			hotel(2, dates, 50, -1),
			hotel(3, dates, -1, 50),
		},
		Policy: pricing.Policy{HotelChange: true},
	}
	sol, ok := pricing.OptimizeDestination(in)
	require.True(t, ok)
	assert.True(t, sol.SingleHotel, "110 is within fifteen percent of 100")
	assert.Equal(t, 110.0, sol.TotalCost)
}

func TestOptimizeDestination_FallsBackToDaily(t *testing.T) {
	dates := nights("2026-05-01", 3)
	in := pricing.Input{
		Dates: dates,
		Table: []models.HotelPriceData{
			hotel(1, dates, 80, -1, 80),
			hotel(2, dates, -1, 90, -1),
		},
	}
	sol, ok := pricing.OptimizeDestination(in)
	require.True(t, ok)
	assert.Equal(t, "cheapest_daily", sol.Strategy)
	assert.Equal(t, 250.0, sol.TotalCost)
	for _, a := range sol.Assignments {
		assert.Equal(t, models.ReasonCheapestDay, a.SelectionReason)
	}
}

func TestOptimizeDestination_NoCoverage(t *testing.T) {
	dates := nights("2026-05-01", 3)
	in := pricing.Input{
		Dates: dates,
		Table: []models.HotelPriceData{
			hotel(1, dates, 80, -1, 80),
			hotel(2, dates, 80, -1, -1),
		},
	}
	_, ok := pricing.OptimizeDestination(in)
	assert.False(t, ok)
	in.Policy.HotelChange = true
	_, ok = pricing.OptimizeDestination(in)
	assert.False(t, ok)
	_, ok = pricing.OptimizeDestination(pricing.Input{Dates: dates})
	assert.False(t, ok, "empty table")
}

func TestPreferredFirst(t *testing.T) {
	dates := nights("2026-05-01", 2)
	table := []models.HotelPriceData{
		hotel(1, dates, 50, 50),
		hotel(2, dates, 90, 90),
		hotel(3, dates, 95, -1),
	}

	sol, ok := pricing.Run(pricing.StrategyPreferredFirst, pricing.Input{
		Dates: dates, Table: table, Policy: pricing.Policy{Preferred: []int{2}},
	})
	require.True(t, ok)
	assert.Equal(t, 2, sol.Assignments[0].HotelID)
	assert.Equal(t, "preferred_first", sol.Strategy)

	// a preferred hotel that cannot cover the stay is ignored
	sol, ok = pricing.Run(pricing.StrategyPreferredFirst, pricing.Input{
		Dates: dates, Table: table, Policy: pricing.Policy{Preferred: []int{3}},
	})
	require.True(t, ok)
	assert.Equal(t, 1, sol.Assignments[0].HotelID)
	assert.Equal(t, "single_hotel", sol.Strategy)
}

func TestBlockSwitch_PreferredBonusAndPenalty(t *testing.T) {
	dates := nights("2026-05-01", 2)
	table := []models.HotelPriceData{
		hotel(1, dates, 100, -1),
		hotel(2, dates, 103, -1),
		hotel(3, dates, -1, 100),
	}
	sol, ok := pricing.Run(pricing.StrategyBlockSwitch, pricing.Input{
		Dates: dates, Table: table, Policy: pricing.Policy{Preferred: []int{2}, HotelChange: true},
	})
	require.True(t, ok)
	assert.Equal(t, 2, sol.Assignments[0].HotelID, "preferred bonus outweighs the higher price")
	assert.Equal(t, models.ReasonPreferredBlock, sol.Assignments[0].SelectionReason)
	assert.Equal(t, models.ReasonCostBlock, sol.Assignments[1].SelectionReason)
	assert.Equal(t, 203.0, sol.TotalCost, "reported cost is unadjusted")

	// staying put beats a switch that saves less than the penalty
	table = []models.HotelPriceData{
		hotel(1, dates, 100, 100),
		hotel(2, dates, 99.5, -1),
	}
	sol, ok = pricing.Run(pricing.StrategyBlockSwitch, pricing.Input{Dates: dates, Table: table})
	require.True(t, ok)
	assert.True(t, sol.SingleHotel)
	assert.Equal(t, 200.0, sol.TotalCost)

	_, ok = pricing.Run(pricing.StrategyBlockSwitch, pricing.Input{Dates: dates[:1], Table: table})
	assert.False(t, ok, "a single night cannot be split")
}

func randomTable(r *rand.Rand, dates []models.Date) []models.HotelPriceData {
	n := 1 + r.IntN(10)
	table := make([]models.HotelPriceData, n)
	for i := range table {
		prices := make([]float64, len(dates))
		for j := range prices {
			if r.IntN(5) == 0 {
				prices[j] = -1
				continue
			}
			prices[j] = float64(40 + r.IntN(200))
		}
		table[i] = hotel(i+1, dates, prices...)
	}
	return table
}

// The single hotel strategy must agree with brute force on small tables.
func TestSingleHotel_MatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 300; round++ {
		dates := nights("2026-07-01", 1+r.IntN(10))
		table := randomTable(r, dates)

		bestID, bestCost := 0, 0.0
		for _, h := range table {
			cost, covered := 0.0, true
			for _, d := range dates {
				p, ok := h.Prices[d.String()]
				if !ok {
					covered = false
					break
				}
				cost += p
			}
			if covered && (bestID == 0 || cost < bestCost) {
				bestID, bestCost = h.HotelID, cost
			}
		}

		sol, ok := pricing.Run(pricing.StrategySingleHotel, pricing.Input{Dates: dates, Table: table})
		if bestID == 0 {
			assert.False(t, ok, "round %d", round)
			continue
		}
		require.True(t, ok, "round %d", round)
		assert.Equal(t, bestID, sol.Assignments[0].HotelID, "round %d", round)
		assert.Equal(t, bestCost, sol.TotalCost, "round %d", round)
	}
}

func TestSolutionsTotalEqualsAssignmentSum(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	strategies := []pricing.Strategy{
		pricing.StrategySingleHotel,
		pricing.StrategyCheapestDaily,
		pricing.StrategyPreferredFirst,
		pricing.StrategyBlockSwitch,
	}
	for round := 0; round < 200; round++ {
		dates := nights("2026-08-10", 1+r.IntN(10))
		in := pricing.Input{
			Dates:  dates,
			Table:  randomTable(r, dates),
			Policy: pricing.Policy{Preferred: []int{1 + r.IntN(5)}, HotelChange: r.IntN(2) == 0},
		}
		for _, s := range strategies {
			sol, ok := pricing.Run(s, in)
			if !ok {
				continue
			}
			assert.Equal(t, sum(sol), sol.TotalCost, "%s round %d", s, round)
			assert.Len(t, sol.Assignments, len(dates))
			assert.Equal(t, dates[0], sol.StartDate)
			assert.Equal(t, dates[len(dates)-1], sol.EndDate)
		}
		if sol, ok := pricing.OptimizeDestination(in); ok {
			assert.Equal(t, sum(sol), sol.TotalCost)
		}
	}
}
