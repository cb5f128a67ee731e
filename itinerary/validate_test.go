package itinerary_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfare/itinerary"
	"wayfare/models"
)

func validRequest() models.OptimizationRequest {
	req := models.NewOptimizationRequest()
	req.Destinations = []models.DestinationRequest{{DestinationID: 1, Nights: 2}}
	req.GlobalDateRange = models.DateRange{Start: models.MustDate("2026-03-01"), End: models.MustDate("2026-03-31")}
	return req
}

func TestValidateRequest_Valid(t *testing.T) {
	assert.Empty(t, itinerary.ValidateRequest(validRequest()))
}

func TestValidateRequest_Errors(t *testing.T) {
	tests := []struct {
		name   string
		change func(*models.OptimizationRequest)
		want   string
	}{
		{"no destinations", func(r *models.OptimizationRequest) { r.Destinations = nil }, "at least one destination"},
		{"too many destinations", func(r *models.OptimizationRequest) {
			r.Destinations = nil
			for i := 1; i <= 11; i++ {
				r.Destinations = append(r.Destinations, models.DestinationRequest{DestinationID: i, Nights: 1})
			}
		}, "at most 10 destinations"},
		{"zero nights", func(r *models.OptimizationRequest) { r.Destinations[0].Nights = 0 }, "nights must be between"},
		{"long stay", func(r *models.OptimizationRequest) { r.Destinations[0].Nights = 31 }, "nights must be between"},
		{"duplicate stop", func(r *models.OptimizationRequest) {
			r.Destinations = append(r.Destinations, models.DestinationRequest{DestinationID: 1, Nights: 1})
		}, "must be unique"},
		{"inverted range", func(r *models.OptimizationRequest) {
			r.GlobalDateRange.End = models.MustDate("2026-02-01")
		}, "global_date_range"},
		{"missing range", func(r *models.OptimizationRequest) { r.GlobalDateRange = models.DateRange{} }, "global_date_range"},
		{"adults", func(r *models.OptimizationRequest) { r.Guests.Adults = 11 }, "adults must be"},
		{"child ages", func(r *models.OptimizationRequest) {
			r.Guests.Children = 2
			r.Guests.ChildAges = []int{4}
		}, "one age per child"},
		{"child too old", func(r *models.OptimizationRequest) {
			r.Guests.Children = 1
			r.Guests.ChildAges = []int{18}
		}, "child ages must be"},
		{"currency", func(r *models.OptimizationRequest) { r.Currency = "EURO" }, "currency"},
		{"top k", func(r *models.OptimizationRequest) { r.TopK = 11 }, "top_k"},
		{"unknown search", func(r *models.OptimizationRequest) { r.SearchTypes = []string{"weekly"} }, "invalid search type"},
		{"all combined", func(r *models.OptimizationRequest) {
			r.SearchTypes = []string{models.SearchAll, models.SearchNormal}
		}, "cannot be combined"},
		{"ranges missing", func(r *models.OptimizationRequest) {
			r.Custom = true
			r.SearchTypes = []string{models.SearchRanges}
		}, "ranges must be provided"},
		{"fixed dates missing", func(r *models.OptimizationRequest) {
			r.Custom = true
			r.SearchTypes = []string{models.SearchFixedDates}
		}, "fixed_dates must be provided"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.change(&req)
			errs := itinerary.ValidateRequest(req)
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				assert.Equal(t, models.ErrorTypeValidation, e.Type)
				if strings.Contains(e.Message, tt.want) {
					found = true
				}
			}
			assert.True(t, found, "no error mentions %q: %+v", tt.want, errs)
		})
	}
}
