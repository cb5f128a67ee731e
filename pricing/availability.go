package pricing

import (
	"slices"

	"wayfare/models"
)

// HotelAvailability describes how much of a window one hotel can serve.
type HotelAvailability struct {
	HotelID         int     `json:"hotel_id"`
	HotelName       string  `json:"hotel_name"`
	Currency        string  `json:"currency"`
	NightsAvailable int     `json:"nights_available"`
	CoversFullRange bool    `json:"covers_full_range"`
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
	AveragePrice    float64 `json:"average_price"`
}

// DestinationAvailability is the per-hotel availability of one destination
// over a window of nights.
type DestinationAvailability struct {
	DestinationID  int                 `json:"destination_id"`
	AreaID         *int                `json:"area_id,omitempty"`
	Window         models.DateRange    `json:"window"`
	Nights         int                 `json:"nights"`
	HotelsPriced   int                 `json:"hotels_priced"`
	FullCoverage   int                 `json:"hotels_covering_range"`
	CheapestSingle *Solution           `json:"cheapest_single_hotel,omitempty"`
	Hotels         []HotelAvailability `json:"hotels"`
}

// Solution is a short form of a single hotel plan.
type Solution struct {
	HotelID   int     `json:"hotel_id"`
	HotelName string  `json:"hotel_name"`
	TotalCost float64 `json:"total_cost"`
	Currency  string  `json:"currency"`
}

// SummarizeAvailability reports, for every hotel of table, the nights of
// window it prices and its price range there. Hotels covering the whole
// window come first, then by average price.
func SummarizeAvailability(destinationID int, areaID *int, window models.DateRange, table []models.HotelPriceData) DestinationAvailability {
	var dates []models.Date
	for d := window.Start; !d.After(window.End); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	out := DestinationAvailability{
		DestinationID: destinationID,
		AreaID:        areaID,
		Window:        window,
		Nights:        len(dates),
		Hotels:        []HotelAvailability{},
	}

	for _, h := range table {
		ha := HotelAvailability{HotelID: h.HotelID, HotelName: h.HotelName, Currency: h.Currency}
		total := 0.0
		for _, d := range dates {
			p, ok := h.PriceOn(d)
			if !ok {
				continue
			}
			if ha.NightsAvailable == 0 || p < ha.MinPrice {
				ha.MinPrice = p
			}
			if p > ha.MaxPrice {
				ha.MaxPrice = p
			}
			ha.NightsAvailable++
			total += p
		}
		if ha.NightsAvailable == 0 {
			continue
		}
		ha.AveragePrice = total / float64(ha.NightsAvailable)
		ha.CoversFullRange = ha.NightsAvailable == len(dates)
		if ha.CoversFullRange {
			out.FullCoverage++
		}
		out.Hotels = append(out.Hotels, ha)
	}
	out.HotelsPriced = len(out.Hotels)

	slices.SortStableFunc(out.Hotels, func(a, b HotelAvailability) int {
		switch {
		case a.CoversFullRange != b.CoversFullRange:
			if a.CoversFullRange {
				return -1
			}
			return 1
		case a.AveragePrice < b.AveragePrice:
			return -1
		case a.AveragePrice > b.AveragePrice:
			return 1
		}
		return a.HotelID - b.HotelID
	})

	if sol, ok := Run(StrategySingleHotel, Input{DestinationID: destinationID, AreaID: areaID, Dates: dates, Table: table}); ok {
		out.CheapestSingle = &Solution{
			HotelID:   sol.Assignments[0].HotelID,
			HotelName: sol.Assignments[0].HotelName,
			TotalCost: sol.TotalCost,
			Currency:  sol.Currency,
		}
	}
	return out
}
