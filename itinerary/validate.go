package itinerary

import (
	"fmt"
	"slices"

	"wayfare/models"
)

// Request bounds.
const (
	MaxDestinations = 10
	MaxNights       = 30
	MaxAdults       = 10
	MaxChildren     = 8
	MaxChildAge     = 17
	MaxTopK         = 10
)

var knownSearchTypes = []string{models.SearchNormal, models.SearchRanges, models.SearchFixedDates, models.SearchAll}

// ValidateRequest checks the shape of a request after defaults were applied
// and returns every problem found. Whether the trip fits its date range is
// checked separately by the date calculator.
func ValidateRequest(req models.OptimizationRequest) []models.ItineraryError {
	var errs []models.ItineraryError
	add := func(msg string, details map[string]any) {
		errs = append(errs, models.ItineraryError{Type: models.ErrorTypeValidation, Message: msg, Details: details})
	}

	switch n := len(req.Destinations); {
	case n == 0:
		add("at least one destination is required", nil)
	case n > MaxDestinations:
		add(fmt.Sprintf("at most %d destinations are allowed", MaxDestinations), map[string]any{"count": n})
	}
	seen := make(map[models.DestinationKey]bool, len(req.Destinations))
	for i, d := range req.Destinations {
		if d.DestinationID <= 0 {
			add("destination_id must be positive", map[string]any{"index": i})
		}
		if d.AreaID != nil && *d.AreaID <= 0 {
			add("area_id must be positive", map[string]any{"index": i})
		}
		if d.Nights < 1 || d.Nights > MaxNights {
			add(fmt.Sprintf("nights must be between 1 and %d", MaxNights), map[string]any{"index": i, "nights": d.Nights})
		}
		key := models.DestinationKey{DestinationID: d.DestinationID, AreaID: d.Area()}
		if seen[key] {
			add("destination and area pairs must be unique", map[string]any{"index": i, "destination_id": d.DestinationID})
		}
		seen[key] = true
	}

	if !validRange(req.GlobalDateRange) {
		add("global_date_range must have an end after its start", nil)
	}

	for i, r := range req.Ranges {
		if !validRange(r) {
			add("each range must have an end after its start", map[string]any{"index": i})
		}
	}
	for i, d := range req.FixedDates {
		if d.IsZero() {
			add("fixed_dates must be valid dates", map[string]any{"index": i})
		}
	}

	g := req.Guests
	if g.Adults < 1 || g.Adults > MaxAdults {
		add(fmt.Sprintf("adults must be between 1 and %d", MaxAdults), map[string]any{"adults": g.Adults})
	}
	if g.Children < 0 || g.Children > MaxChildren {
		add(fmt.Sprintf("children must be between 0 and %d", MaxChildren), map[string]any{"children": g.Children})
	}
	if len(g.ChildAges) > 0 && len(g.ChildAges) != g.Children {
		add("child_ages must list one age per child", map[string]any{"children": g.Children, "ages": len(g.ChildAges)})
	}
	for _, age := range g.ChildAges {
		if age < 0 || age > MaxChildAge {
			add(fmt.Sprintf("child ages must be between 0 and %d", MaxChildAge), map[string]any{"age": age})
			break
		}
	}

	if len(req.Currency) != 3 {
		add("currency must be a 3 letter code", map[string]any{"currency": req.Currency})
	}
	if req.TopK < 1 || req.TopK > MaxTopK {
		add(fmt.Sprintf("top_k must be between 1 and %d", MaxTopK), map[string]any{"top_k": req.TopK})
	}
	if req.MaxOptimizationTimeMS < 0 {
		add("max_optimization_time_ms cannot be negative", nil)
	}

	for _, st := range req.SearchTypes {
		if !slices.Contains(knownSearchTypes, st) {
			add(fmt.Sprintf("invalid search type: %s", st), nil)
		}
	}
	if slices.Contains(req.SearchTypes, models.SearchAll) && len(req.SearchTypes) > 1 {
		add("'all' search type cannot be combined with others", nil)
	}
	if req.Custom {
		if slices.Contains(req.SearchTypes, models.SearchRanges) && len(req.Ranges) == 0 {
			add("ranges must be provided for ranges search", nil)
		}
		if slices.Contains(req.SearchTypes, models.SearchFixedDates) && len(req.FixedDates) == 0 {
			add("fixed_dates must be provided for fixed_dates search", nil)
		}
	}
	return errs
}

func validRange(r models.DateRange) bool {
	return !r.Start.IsZero() && !r.End.IsZero() && r.End.After(r.Start)
}
