package itinerary

import (
	"log"

	"wayfare/models"
	"wayfare/pricing"
)

// buildItinerary turns a priced date plan into its response form. It returns
// nil when any stop has no hotel plan: a partial itinerary is never shown.
func (o *Optimizer) buildItinerary(c candidate, req models.OptimizationRequest, sols map[models.DestinationKey]*models.DestinationHotelSolution) *models.ItineraryResponse {
	a := c.assignment
	dests := make([]models.DestinationResponse, 0, len(a.Stops))
	priced := make([]*models.DestinationHotelSolution, 0, len(a.Stops))

	for i, stop := range a.Stops {
		sol, ok := sols[stop.Key()]
		if !ok || sol == nil {
			log.Printf("[itinerary] %s: dropping %s candidate %s..%s, destination %d unpriced",
				models.ErrorTypeComputation, c.searchType, a.StartDate, a.EndDate, stop.DestinationID)
			return nil
		}
		priced = append(priced, sol)
		dests = append(dests, o.destinationResponse(i+1, stop, sol))
	}

	st := pricing.ItineraryStatistics(priced)
	it := &models.ItineraryResponse{
		SearchType:              c.searchType,
		Label:                   c.label,
		Destinations:            dests,
		TotalCost:               st.TotalCost,
		Currency:                st.Currency,
		MixedCurrency:           st.MixedCurrency,
		TotalNights:             a.TotalNights,
		StartDate:               a.StartDate,
		EndDate:                 a.EndDate,
		SingleHotelDestinations: st.SingleHotelDestinations,
	}
	for _, sol := range priced {
		it.AlternativesGenerated += sol.Alternatives
	}
	return it
}

func (o *Optimizer) destinationResponse(order int, stop models.Stop, sol *models.DestinationHotelSolution) models.DestinationResponse {
	assignments := make([]models.HotelAssignmentResponse, 0, len(sol.Assignments))
	for _, ha := range sol.Assignments {
		assignments = append(assignments, models.HotelAssignmentResponse{
			HotelID:         ha.HotelID,
			HotelName:       ha.HotelName,
			AssignmentDate:  ha.Date,
			Price:           ha.Price,
			Currency:        ha.Currency,
			RoomType:        ha.RoomType,
			SelectionReason: ha.SelectionReason,
		})
	}
	return models.DestinationResponse{
		DestinationID:    stop.DestinationID,
		DestinationName:  o.opts.DestinationName(stop.DestinationID),
		AreaID:           stop.AreaID,
		Order:            order,
		Nights:           stop.Nights,
		StartDate:        stop.StartDate,
		EndDate:          stop.EndDate,
		TotalCost:        sol.TotalCost,
		Currency:         sol.Currency,
		HotelsCount:      sol.HotelsCount,
		SingleHotel:      sol.SingleHotel,
		HotelAssignments: assignments,
	}
}
