package itinerary

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"

	"wayfare/models"
)

// Fingerprint identifies a request by what it asks for. Two requests that
// differ only in ordering of search types or preferred hotels, currency
// case, cache use or time budget share a fingerprint.
//
// The request is canonicalised into nested maps so encoding/json emits the
// keys sorted.
func Fingerprint(req models.OptimizationRequest) string {
	req.ApplyDefaults()

	searchTypes := slices.Clone(req.SearchTypes)
	slices.Sort(searchTypes)
	searchTypes = slices.Compact(searchTypes)

	preferred := append([]int{}, req.PreferredHotels...)
	slices.Sort(preferred)
	preferred = slices.Compact(preferred)

	destinations := make([]map[string]any, len(req.Destinations))
	for i, d := range req.Destinations {
		destinations[i] = map[string]any{
			"destination_id": d.DestinationID,
			"area_id":        d.AreaID,
			"nights":         d.Nights,
		}
	}

	ranges := make([]map[string]any, len(req.Ranges))
	for i, r := range req.Ranges {
		ranges[i] = isoRange(r)
	}

	fixed := make([]string, len(req.FixedDates))
	for i, d := range req.FixedDates {
		fixed[i] = d.String()
	}

	childAges := req.Guests.ChildAges
	if childAges == nil {
		childAges = []int{}
	}

	canonical := map[string]any{
		"custom":            req.Custom,
		"search_types":      searchTypes,
		"destinations":      destinations,
		"global_date_range": isoRange(req.GlobalDateRange),
		"ranges":            ranges,
		"fixed_dates":       fixed,
		"guests": map[string]any{
			"adults":     req.Guests.Adults,
			"children":   req.Guests.Children,
			"child_ages": childAges,
		},
		"currency":         strings.ToUpper(req.Currency),
		"top_k":            req.TopK,
		"preferred_hotels": preferred,
		"hotel_change":     req.HotelChange,
	}

	// json.Marshal cannot fail on maps of strings, numbers and slices.
	raw, _ := json.Marshal(canonical)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func isoRange(r models.DateRange) map[string]any {
	return map[string]any{"start": r.Start.String(), "end": r.End.String()}
}
