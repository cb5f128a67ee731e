package models

import "time"

// Selection reasons recorded on every HotelAssignment.
const (
	ReasonSingleHotel    = "single_hotel"
	ReasonCheapestDay    = "cheapest_day"
	ReasonPreferredBlock = "preferred_block"
	ReasonCostBlock      = "cost_block"
)

// Hotel is a row of the hotels collection the price provider reads.
type Hotel struct {
	HotelID       int     `json:"hotel_id" bson:"hotel_id"`
	Name          string  `json:"name" bson:"name"`
	DestinationID int     `json:"destination_id" bson:"destination_id"`
	AreaID        int     `json:"area_id,omitempty" bson:"area_id,omitempty"`
	Stars         float64 `json:"stars" bson:"stars"`
	GuestRating   float64 `json:"guest_rating,omitempty" bson:"guest_rating,omitempty"`
	IsActive      bool    `json:"is_active" bson:"is_active"`
}

// PriceRecord is one observed nightly price. Several records may exist for
// the same hotel and date; the latest RecordedAt wins.
type PriceRecord struct {
	HotelID     int       `json:"hotel_id" bson:"hotel_id"`
	PriceDate   string    `json:"price_date" bson:"price_date"`
	Price       float64   `json:"price" bson:"price"`
	Currency    string    `json:"currency" bson:"currency"`
	RoomType    string    `json:"room_type,omitempty" bson:"room_type,omitempty"`
	IsAvailable bool      `json:"is_available" bson:"is_available"`
	RecordedAt  time.Time `json:"recorded_at" bson:"recorded_at"`
}

// HotelPriceData is one hotel's nightly prices over a requested range.
type HotelPriceData struct {
	HotelID        int                `json:"hotel_id"`
	HotelName      string             `json:"hotel_name"`
	Prices         map[string]float64 `json:"prices"`
	Currency       string             `json:"currency"`
	AvailableDates []Date             `json:"availability_dates"`
}

// PriceOn returns the nightly price for d, if the hotel has one.
func (h HotelPriceData) PriceOn(d Date) (float64, bool) {
	p, ok := h.Prices[d.String()]
	return p, ok
}

// Covers reports whether the hotel prices every one of dates.
func (h HotelPriceData) Covers(dates []Date) bool {
	for _, d := range dates {
		if _, ok := h.PriceOn(d); !ok {
			return false
		}
	}
	return true
}

type HotelAssignment struct {
	HotelID         int     `json:"hotel_id"`
	HotelName       string  `json:"hotel_name"`
	Date            Date    `json:"assignment_date"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	RoomType        string  `json:"room_type,omitempty"`
	SelectionReason string  `json:"selection_reason"`
}

// DestinationHotelSolution is the chosen hotel plan for one stop.
type DestinationHotelSolution struct {
	DestinationID int               `json:"destination_id"`
	AreaID        *int              `json:"area_id,omitempty"`
	StartDate     Date              `json:"start_date"`
	EndDate       Date              `json:"end_date"`
	Assignments   []HotelAssignment `json:"assignments"`
	TotalCost     float64           `json:"total_cost"`
	Currency      string            `json:"currency"`
	SingleHotel   bool              `json:"single_hotel"`
	HotelsCount   int               `json:"hotels_count"`
	Strategy      string            `json:"strategy"`
	Alternatives  int               `json:"alternatives"`
}

// DestinationKey identifies a stop by destination and area; area 0 means none.
type DestinationKey struct {
	DestinationID int
	AreaID        int
}

// Stop is one destination's dated stay inside a ConsecutiveAssignment.
// EndDate is the last night spent there.
type Stop struct {
	DestinationID int
	AreaID        *int
	Nights        int
	StartDate     Date
	EndDate       Date
}

func (s Stop) Key() DestinationKey {
	k := DestinationKey{DestinationID: s.DestinationID}
	if s.AreaID != nil {
		k.AreaID = *s.AreaID
	}
	return k
}

// Dates lists every night of the stay in order.
func (s Stop) Dates() []Date {
	var out []Date
	for d := s.StartDate; !d.After(s.EndDate); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// ConsecutiveAssignment is a full date plan where each stop begins the day
// after the previous one ends.
type ConsecutiveAssignment struct {
	Stops       []Stop
	TotalNights int
	StartDate   Date
	EndDate     Date
}
