package prices

import (
	"slices"

	"wayfare/models"
)

// BuildTable folds raw price records into one HotelPriceData per hotel.
// When a hotel has several records for the same date the most recently
// recorded one wins. Unavailable records are ignored and hotels without
// any price are left out. Output follows the order of hotels.
func BuildTable(hotels []models.Hotel, records []models.PriceRecord, currency string) []models.HotelPriceData {
	type latest struct {
		rec models.PriceRecord
		set bool
	}
	byHotel := make(map[int]map[string]latest, len(hotels))
	for _, r := range records {
		if !r.IsAvailable {
			continue
		}
		dates, ok := byHotel[r.HotelID]
		if !ok {
			dates = make(map[string]latest)
			byHotel[r.HotelID] = dates
		}
		cur := dates[r.PriceDate]
		if !cur.set || r.RecordedAt.After(cur.rec.RecordedAt) {
			dates[r.PriceDate] = latest{rec: r, set: true}
		}
	}

	var out []models.HotelPriceData
	for _, h := range hotels {
		dates := byHotel[h.HotelID]
		if len(dates) == 0 {
			continue
		}
		row := models.HotelPriceData{
			HotelID:   h.HotelID,
			HotelName: h.Name,
			Currency:  currency,
			Prices:    make(map[string]float64, len(dates)),
		}
		for day, l := range dates {
			d, err := models.ParseDate(day)
			if err != nil {
				continue
			}
			row.Prices[day] = l.rec.Price
			row.AvailableDates = append(row.AvailableDates, d)
		}
		slices.SortFunc(row.AvailableDates, func(a, b models.Date) int {
			return a.Time().Compare(b.Time())
		})
		out = append(out, row)
	}
	return out
}

func sortHotels(hotels []models.Hotel) {
	slices.SortFunc(hotels, func(a, b models.Hotel) int { return a.HotelID - b.HotelID })
}
