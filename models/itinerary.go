package models

import "strings"

// Search modes accepted in OptimizationRequest.SearchTypes.
const (
	SearchNormal     = "normal"
	SearchRanges     = "ranges"
	SearchFixedDates = "fixed_dates"
	SearchAll        = "all"
)

// DestinationRequest is one stop of a requested trip, in visiting order.
type DestinationRequest struct {
	DestinationID int  `json:"destination_id"`
	AreaID        *int `json:"area_id,omitempty"`
	Nights        int  `json:"nights"`
}

// Area returns the area id or 0 when none was requested.
func (d DestinationRequest) Area() int {
	if d.AreaID == nil {
		return 0
	}
	return *d.AreaID
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Days is the number of calendar days covered, both ends included.
func (r DateRange) Days() int {
	return r.Start.DaysUntil(r.End) + 1
}

// Contains reports whether d lies inside the range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

type GuestConfig struct {
	Adults    int   `json:"adults"`
	Children  int   `json:"children"`
	ChildAges []int `json:"child_ages,omitempty"`
}

// OptimizationRequest is the full input of one itinerary optimization.
type OptimizationRequest struct {
	Custom           bool                 `json:"custom"`
	SearchTypes      []string             `json:"search_types"`
	Destinations     []DestinationRequest `json:"destinations"`
	SuggestBestOrder bool                 `json:"suggest_best_order,omitempty"`
	GlobalDateRange  DateRange            `json:"global_date_range"`
	Ranges           []DateRange          `json:"ranges,omitempty"`
	FixedDates       []Date               `json:"fixed_dates,omitempty"`
	Guests           GuestConfig          `json:"guests"`
	Currency         string               `json:"currency"`
	TopK             int                  `json:"top_k"`
	PreferredHotels  []int                `json:"preferred_hotels,omitempty"`
	HotelChange      bool                 `json:"hotel_change"`
	UseCache         bool                 `json:"use_cache"`
	// MaxOptimizationTimeMS is a soft budget; zero means unbounded.
	MaxOptimizationTimeMS int `json:"max_optimization_time_ms,omitempty"`
}

// DefaultOptimizationTimeMS is the soft time budget of a request that does not set one.
const DefaultOptimizationTimeMS = 30000

// NewOptimizationRequest returns a request preset with the defaults of
// fields whose zero value is meaningful, so decoding JSON over it leaves
// absent fields at their documented defaults.
func NewOptimizationRequest() OptimizationRequest {
	return OptimizationRequest{
		SearchTypes:           []string{SearchNormal},
		SuggestBestOrder:      true,
		Guests:                GuestConfig{Adults: 1},
		Currency:              "USD",
		TopK:                  3,
		UseCache:              true,
		MaxOptimizationTimeMS: DefaultOptimizationTimeMS,
	}
}

// ApplyDefaults fills the optional fields the way the public API documents them.
func (r *OptimizationRequest) ApplyDefaults() {
	if len(r.SearchTypes) == 0 {
		r.SearchTypes = []string{SearchNormal}
	}
	if r.Guests.Adults == 0 {
		r.Guests.Adults = 1
	}
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Currency == "" {
		r.Currency = "USD"
	}
	if r.TopK == 0 {
		r.TopK = 3
	}
}

// HotelAssignmentResponse is one night at one hotel.
type HotelAssignmentResponse struct {
	HotelID         int     `json:"hotel_id"`
	HotelName       string  `json:"hotel_name"`
	AssignmentDate  Date    `json:"assignment_date"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	RoomType        string  `json:"room_type,omitempty"`
	SelectionReason string  `json:"selection_reason,omitempty"`
}

type DestinationResponse struct {
	DestinationID    int                       `json:"destination_id"`
	DestinationName  string                    `json:"destination_name"`
	AreaID           *int                      `json:"area_id,omitempty"`
	Order            int                       `json:"order"`
	Nights           int                       `json:"nights"`
	StartDate        Date                      `json:"start_date"`
	EndDate          Date                      `json:"end_date"`
	TotalCost        float64                   `json:"total_cost"`
	Currency         string                    `json:"currency"`
	HotelsCount      int                       `json:"hotels_count"`
	SingleHotel      bool                      `json:"single_hotel"`
	HotelAssignments []HotelAssignmentResponse `json:"hotel_assignments"`
}

// ItineraryResponse is one fully priced candidate trip.
type ItineraryResponse struct {
	SearchType              string                `json:"search_type"`
	Label                   string                `json:"label,omitempty"`
	Destinations            []DestinationResponse `json:"destinations"`
	TotalCost               float64               `json:"total_cost"`
	Currency                string                `json:"currency"`
	MixedCurrency           bool                  `json:"mixed_currency,omitempty"`
	TotalNights             int                   `json:"total_nights"`
	StartDate               Date                  `json:"start_date"`
	EndDate                 Date                  `json:"end_date"`
	AlternativesGenerated   int                   `json:"alternatives_generated"`
	SingleHotelDestinations int                   `json:"single_hotel_destinations"`
}

// MonthlyOptions groups the start/mid/end candidates of one calendar month.
// A nil option means it was in the past, outside the range or unpriceable.
type MonthlyOptions struct {
	Month      string             `json:"month"`
	StartMonth *ItineraryResponse `json:"start_month"`
	MidMonth   *ItineraryResponse `json:"mid_month"`
	EndMonth   *ItineraryResponse `json:"end_month"`
}

// Options lists the non-nil candidates in start, mid, end order.
func (m MonthlyOptions) Options() []*ItineraryResponse {
	var out []*ItineraryResponse
	for _, opt := range []*ItineraryResponse{m.StartMonth, m.MidMonth, m.EndMonth} {
		if opt != nil {
			out = append(out, opt)
		}
	}
	return out
}

type NormalSearchResults struct {
	MonthlyOptions []MonthlyOptions `json:"monthly_options"`
}

// ResultsBlock carries the itineraries of the ranges and fixed_dates modes.
type ResultsBlock struct {
	Results []ItineraryResponse `json:"results"`
}

type OptimizationMetadata struct {
	ProcessingTimeMS      int64    `json:"processing_time_ms"`
	CacheHit              bool     `json:"cache_hit"`
	HotelsSearched        int      `json:"hotels_searched"`
	PriceQueries          int      `json:"price_queries"`
	AlternativesGenerated int      `json:"alternatives_generated"`
	BestCostFound         *float64 `json:"best_cost_found"`
	TimeBudgetExceeded    bool     `json:"time_budget_exceeded,omitempty"`
	CandidatesSkipped     int      `json:"candidates_skipped,omitempty"`
}

// Error types reported in OptimizationResponse.Errors.
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeComputation  = "computation_error"
	ErrorTypeExternal     = "external_service_error"
	ErrorTypeOptimization = "optimization_error"
)

type ItineraryError struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// OptimizationResponse is what the orchestrator hands back to the HTTP layer.
type OptimizationResponse struct {
	Success        bool                  `json:"success"`
	RequestHash    string                `json:"request_hash"`
	RequestID      string                `json:"request_id,omitempty"`
	Normal         *NormalSearchResults  `json:"normal,omitempty"`
	Ranges         *ResultsBlock         `json:"ranges,omitempty"`
	FixedDates     *ResultsBlock         `json:"fixed_dates,omitempty"`
	BestItinerary  *ItineraryResponse    `json:"best_itinerary"`
	Metadata       *OptimizationMetadata `json:"metadata,omitempty"`
	FiltersApplied map[string]any        `json:"filters_applied,omitempty"`
	Message        string                `json:"message,omitempty"`
	Errors         []ItineraryError      `json:"errors,omitempty"`
}

// AllItineraries flattens every result block, normal search first.
func (r *OptimizationResponse) AllItineraries() []ItineraryResponse {
	var out []ItineraryResponse
	if r.Normal != nil {
		for _, month := range r.Normal.MonthlyOptions {
			for _, opt := range month.Options() {
				out = append(out, *opt)
			}
		}
	}
	if r.Ranges != nil {
		out = append(out, r.Ranges.Results...)
	}
	if r.FixedDates != nil {
		out = append(out, r.FixedDates.Results...)
	}
	return out
}
