package routes

import (
	"github.com/julienschmidt/httprouter"

	"wayfare/itinerary"
	"wayfare/middleware"
	"wayfare/ratelim"
)

// AddItineraryRoutes registers the optimizer endpoints. Optimization is open
// to anonymous callers; a valid token only tags the history record.
func AddItineraryRoutes(router *httprouter.Router, h *itinerary.Handler, auth *middleware.Auth, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/itineraries/optimize",
		middleware.Chain(rateLimiter.Limit, auth.OptionalAuth)(h.Optimize))
	router.GET("/api/itineraries/optimize/:hash", rateLimiter.Limit(h.GetCached))
	router.GET("/api/itineraries/optimize/:hash/pdf", rateLimiter.Limit(h.PrintCached))
	router.GET("/api/itineraries/history",
		middleware.Chain(rateLimiter.Limit, auth.Authenticate)(h.History))
}

func AddDestinationRoutes(router *httprouter.Router, h *itinerary.Handler, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/destinations/:id/availability", rateLimiter.Limit(h.Availability))
}
