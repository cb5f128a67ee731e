package itinerary

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"wayfare/models"
	"wayfare/pricing"
	"wayfare/printout"
	"wayfare/utils"
)

const maxRequestBytes = 1 << 20

// HistoryLister reads back a user's optimization history.
type HistoryLister interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.HistoryRecord, error)
}

// Handler exposes the optimizer over HTTP.
type Handler struct {
	optimizer *Optimizer
	prices    pricing.PriceProvider
	history   HistoryLister
	timeout   time.Duration
}

// NewHandler builds the HTTP surface. timeout bounds every request; history
// may be nil, in which case the history endpoint answers 503.
func NewHandler(o *Optimizer, prices pricing.PriceProvider, history HistoryLister, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Handler{optimizer: o, prices: prices, history: history, timeout: timeout}
}

// Optimize handles POST /api/itineraries/optimize.
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := models.NewOptimizationRequest()
	if err := utils.DecodeJSON(r, &req, maxRequestBytes); err != nil {
		log.Printf("[itinerary] decode request: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := h.optimizer.Optimize(ctx, req, utils.GetUserIDFromRequest(r))
	utils.RespondWithJSON(w, statusFor(resp), resp)
}

func statusFor(resp *models.OptimizationResponse) int {
	if resp.Success {
		return http.StatusOK
	}
	for _, e := range resp.Errors {
		if e.Type != models.ErrorTypeValidation {
			return http.StatusInternalServerError
		}
	}
	return http.StatusBadRequest
}

// GetCached handles GET /api/itineraries/optimize/:hash.
func (h *Handler) GetCached(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp, ok := h.optimizer.Cached(ctx, ps.ByName("hash"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Optimization result not found or expired")
		return
	}
	resp.Metadata.CacheHit = true
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// PrintCached handles GET /api/itineraries/optimize/:hash/pdf.
func (h *Handler) PrintCached(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	hash := ps.ByName("hash")
	resp, ok := h.optimizer.Cached(ctx, hash)
	if !ok {
		http.Error(w, "Optimization result not found or expired", http.StatusNotFound)
		return
	}
	pdf, err := printout.RenderItinerary(resp)
	if errors.Is(err, printout.ErrNothingToPrint) {
		http.Error(w, "No itinerary to print", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[itinerary] render %s: %v", short(hash), err)
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=itinerary-"+short(hash)+".pdf")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("[itinerary] write pdf %s: %v", short(hash), err)
	}
}

// History handles GET /api/itineraries/history for the authenticated user.
func (h *Handler) History(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if h.history == nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "History is unavailable")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, err := h.history.ListByUser(ctx, userID, utils.QueryLimit(r, 20, 100))
	if err != nil {
		log.Printf("[itinerary] list history for %s: %v", userID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	if records == nil {
		records = []models.HistoryRecord{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"history": records, "count": len(records)})
}

// Availability handles GET /api/destinations/:id/availability?start=&end=.
// start and end are the first and last night of the window.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	destID, err := strconv.Atoi(ps.ByName("id"))
	if err != nil || destID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid destination id")
		return
	}
	q := r.URL.Query()
	start, err := models.ParseDate(q.Get("start"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid start date")
		return
	}
	end, err := models.ParseDate(q.Get("end"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid end date")
		return
	}
	window := models.DateRange{Start: start, End: end}
	if end.Before(start) || window.Days() > MaxNights {
		utils.RespondWithError(w, http.StatusBadRequest, "Window must span 1 to 30 nights")
		return
	}

	var areaID *int
	if raw := q.Get("area_id"); raw != "" {
		a, err := strconv.Atoi(raw)
		if err != nil || a <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid area id")
			return
		}
		areaID = &a
	}
	currency := strings.ToUpper(q.Get("currency"))
	if currency == "" {
		currency = "USD"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	table, err := h.prices.GetPrices(ctx, destID, areaID, window, models.GuestConfig{Adults: 1}, currency)
	if err != nil {
		log.Printf("[itinerary] %s: availability for destination %d: %v", models.ErrorTypeExternal, destID, err)
		utils.RespondWithError(w, http.StatusBadGateway, "Price lookup failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, pricing.SummarizeAvailability(destID, areaID, window, table))
}
