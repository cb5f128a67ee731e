// Package itinerary turns optimization requests into priced trip options.
//
// A request moves through received, fingerprinted, then either cache_hit or
// computing, and ends as responded. Computing generates candidate date plans
// for every requested search mode, prices them on a bounded worker pool and
// ranks the survivors.
package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"wayfare/datewin"
	"wayfare/models"
	"wayfare/pricing"
	"wayfare/rdx"
	"wayfare/utils"
)

// Pricer prices every stop of one date plan.
type Pricer interface {
	OptimizeCompleteItinerary(ctx context.Context, a models.ConsecutiveAssignment, guests models.GuestConfig, currency string, preferred []int, hotelChange bool) (map[models.DestinationKey]*models.DestinationHotelSolution, pricing.Stats, error)
}

// Cache stores serialized responses under their fingerprint key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// HistorySink receives one record per successful response.
type HistorySink interface {
	Record(ctx context.Context, rec models.HistoryRecord) error
}

const (
	DefaultCacheTTL = time.Hour
	DefaultWorkers  = 4

	historyTimeout = 2 * time.Second
)

// Candidate labels.
const (
	LabelStartMonth = "start_month"
	LabelMidMonth   = "mid_month"
	LabelEndMonth   = "end_month"
	LabelRange      = "range_optimized"
	LabelFixedDate  = "fixed_date"
)

var errPanic = errors.New("panic during optimization")

type Options struct {
	Workers         int
	MaxCombinations int
	CacheTTL        time.Duration
	// MaxTimeBudget caps every request's soft budget, unbounded ones
	// included. Zero leaves requests uncapped.
	MaxTimeBudget   time.Duration
	Now             func() time.Time
	// DestinationName resolves display names; defaults to "Destination <id>".
	DestinationName func(id int) string
}

type Optimizer struct {
	dates  *datewin.Calculator
	pricer Pricer
	cache  Cache
	sink   HistorySink
	opts   Options
}

// NewOptimizer wires the orchestrator. cache and sink may be nil.
func NewOptimizer(dates *datewin.Calculator, pricer Pricer, cache Cache, sink HistorySink, opts Options) *Optimizer {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.MaxCombinations <= 0 {
		opts.MaxCombinations = datewin.DefaultMaxCombinations
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DestinationName == nil {
		opts.DestinationName = func(id int) string { return fmt.Sprintf("Destination %d", id) }
	}
	return &Optimizer{dates: dates, pricer: pricer, cache: cache, sink: sink, opts: opts}
}

// Optimize runs one request to completion. It never returns an error:
// failures are reported inside the response with Success false.
func (o *Optimizer) Optimize(ctx context.Context, req models.OptimizationRequest, userID string) (resp *models.OptimizationResponse) {
	start := o.opts.Now()
	req.ApplyDefaults()
	hash := Fingerprint(req)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[itinerary] %s: recovered: %v", short(hash), r)
			resp = failure(hash, models.ErrorTypeOptimization, fmt.Sprintf("optimization failed: %v", r))
		}
	}()

	if req.UseCache {
		if cached, ok := o.Cached(ctx, hash); ok {
			log.Printf("[itinerary] cache hit for request %s", short(hash))
			cached.RequestID = utils.GetUUID()
			cached.Metadata.CacheHit = true
			o.record(ctx, cached, req, userID)
			return cached
		}
	}

	if errs := o.validate(req); len(errs) > 0 {
		log.Printf("[itinerary] %s: %d validation errors", short(hash), len(errs))
		return &models.OptimizationResponse{
			Success:     false,
			RequestHash: hash,
			Message:     "request validation failed",
			Errors:      errs,
		}
	}

	resp = o.compute(ctx, req, hash, start)
	if !resp.Success {
		return resp
	}

	if req.UseCache && resp.BestItinerary != nil && !resp.Metadata.TimeBudgetExceeded {
		o.store(ctx, hash, resp)
	}
	o.record(ctx, resp, req, userID)
	log.Printf("[itinerary] %s: %d itineraries in %dms", short(hash), len(resp.AllItineraries()), resp.Metadata.ProcessingTimeMS)
	return resp
}

func (o *Optimizer) validate(req models.OptimizationRequest) []models.ItineraryError {
	errs := ValidateRequest(req)
	if len(errs) > 0 {
		return errs
	}
	v := o.dates.ValidateDateConstraints(req.GlobalDateRange, req.Destinations)
	for _, w := range v.Warnings {
		log.Printf("[itinerary] warning: %s", w)
	}
	for _, msg := range v.Errors {
		errs = append(errs, models.ItineraryError{
			Type:    models.ErrorTypeValidation,
			Message: msg,
			Details: map[string]any{"total_nights": v.TotalNights, "range_days": v.RangeDays},
		})
	}
	return errs
}

// Cached returns the stored response for a fingerprint. Cache failures and
// undecodable entries count as misses.
func (o *Optimizer) Cached(ctx context.Context, hash string) (*models.OptimizationResponse, bool) {
	if o.cache == nil {
		return nil, false
	}
	key := rdx.OptimizationKey(hash)
	raw, found, err := o.cache.Get(ctx, key)
	if err != nil {
		log.Printf("[itinerary] %s: cache get %s: %v", models.ErrorTypeExternal, key, err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var resp models.OptimizationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		log.Printf("[itinerary] discarding undecodable cache entry %s: %v", key, err)
		return nil, false
	}
	if resp.Metadata == nil {
		resp.Metadata = &models.OptimizationMetadata{}
	}
	return &resp, true
}

func (o *Optimizer) store(ctx context.Context, hash string, resp *models.OptimizationResponse) {
	if o.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		log.Printf("[itinerary] %s: encode response for cache: %v", short(hash), err)
		return
	}
	key := rdx.OptimizationKey(hash)
	if err := o.cache.Set(ctx, key, raw, o.opts.CacheTTL); err != nil {
		log.Printf("[itinerary] %s: cache set %s: %v", models.ErrorTypeExternal, key, err)
	}
}

func (o *Optimizer) record(ctx context.Context, resp *models.OptimizationResponse, req models.OptimizationRequest, userID string) {
	if o.sink == nil {
		return
	}
	meta := resp.Metadata
	rec := models.HistoryRecord{
		ID:                   utils.GetUUID(),
		RequestHash:          resp.RequestHash,
		UserID:               userID,
		SearchTypes:          req.SearchTypes,
		DestinationCount:     len(req.Destinations),
		ItinerariesGenerated: len(resp.AllItineraries()),
		BestCost:             meta.BestCostFound,
		Currency:             req.Currency,
		ProcessingTimeMS:     meta.ProcessingTimeMS,
		CacheHit:             meta.CacheHit,
		CreatedAt:            o.opts.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()
	if err := o.sink.Record(ctx, rec); err != nil {
		log.Printf("[itinerary] %s: history record for %s: %v", models.ErrorTypeExternal, short(resp.RequestHash), err)
	}
}

// candidate is one date plan waiting to be priced.
type candidate struct {
	assignment models.ConsecutiveAssignment
	searchType string
	label      string
	month      int
}

// plan is the set of searches a request runs and their candidates.
type plan struct {
	modes      []string
	months     []datewin.MonthSlice
	candidates []candidate
}

// searchModes resolves the modes to execute, in execution order.
func searchModes(req models.OptimizationRequest) []string {
	if !req.Custom {
		return []string{models.SearchNormal}
	}
	var modes []string
	add := func(m string) {
		for _, have := range modes {
			if have == m {
				return
			}
		}
		modes = append(modes, m)
	}
	for _, st := range req.SearchTypes {
		switch st {
		case models.SearchAll:
			add(models.SearchNormal)
			add(models.SearchRanges)
			if len(req.FixedDates) > 0 {
				add(models.SearchFixedDates)
			}
		default:
			add(st)
		}
	}
	return modes
}

func (o *Optimizer) buildPlan(req models.OptimizationRequest) plan {
	p := plan{modes: searchModes(req)}
	global, dests := req.GlobalDateRange, req.Destinations

	for _, mode := range p.modes {
		switch mode {
		case models.SearchNormal:
			p.months = o.dates.GenerateMonthlySlices(global, dests)
			for mi, m := range p.months {
				for _, opt := range []struct {
					a     *models.ConsecutiveAssignment
					label string
				}{{m.Start, LabelStartMonth}, {m.Mid, LabelMidMonth}, {m.End, LabelEndMonth}} {
					if opt.a != nil {
						p.candidates = append(p.candidates, candidate{assignment: *opt.a, searchType: mode, label: opt.label, month: mi})
					}
				}
			}
		case models.SearchRanges:
			ranges := req.Ranges
			if len(ranges) == 0 {
				ranges = datewin.DefaultRanges(global)
				log.Printf("[itinerary] no ranges given, using %d default ranges", len(ranges))
			}
			for _, a := range o.dates.GenerateRangeAssignments(ranges, dests, req.TopK) {
				p.candidates = append(p.candidates, candidate{assignment: a, searchType: mode, label: LabelRange})
			}
		case models.SearchFixedDates:
			for _, a := range o.dates.GenerateFixedDateAssignments(global, req.FixedDates, dests) {
				p.candidates = append(p.candidates, candidate{assignment: a, searchType: mode, label: LabelFixedDate})
			}
		}
	}

	if len(p.candidates) > o.opts.MaxCombinations {
		log.Printf("[itinerary] %d candidates capped at %d", len(p.candidates), o.opts.MaxCombinations)
		p.candidates = p.candidates[:o.opts.MaxCombinations]
	}
	return p
}

// runResult is what the worker pool hands back for assembly.
type runResult struct {
	itineraries []*models.ItineraryResponse
	stats       pricing.Stats
	skipped     int
}

// run prices every candidate on a bounded pool. Once the deadline passes or
// ctx ends no further candidate starts; those already running finish or are
// dropped. Either way the unpriced ones count as skipped and what finished is
// returned. A zero deadline means no budget. Results keep candidate order,
// nil where a plan could not be priced.
func (o *Optimizer) run(ctx context.Context, req models.OptimizationRequest, cands []candidate, deadline time.Time) (runResult, error) {
	itineraries := make([]*models.ItineraryResponse, len(cands))
	stats := make([]pricing.Stats, len(cands))
	var skipped, priced atomic.Int64
	stopped := func() bool {
		return ctx.Err() != nil || (!deadline.IsZero() && o.opts.Now().After(deadline))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for i, c := range cands {
		if stopped() {
			skipped.Add(int64(len(cands) - i))
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %v", errPanic, r)
				}
			}()
			if stopped() {
				skipped.Add(1)
				return nil
			}
			sols, st, err := o.pricer.OptimizeCompleteItinerary(gctx, c.assignment, req.Guests, req.Currency, req.PreferredHotels, req.HotelChange)
			if err != nil {
				if ctx.Err() != nil {
					skipped.Add(1)
					return nil
				}
				return err
			}
			priced.Add(1)
			stats[i] = st
			itineraries[i] = o.buildItinerary(c, req, sols)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return runResult{}, err
	}
	if err := ctx.Err(); err != nil && priced.Load() == 0 {
		return runResult{}, fmt.Errorf("no candidate priced: %w", err)
	}

	res := runResult{itineraries: itineraries, skipped: int(skipped.Load())}
	for _, st := range stats {
		res.stats.Add(st)
	}
	return res, nil
}

func (o *Optimizer) compute(ctx context.Context, req models.OptimizationRequest, hash string, start time.Time) *models.OptimizationResponse {
	p := o.buildPlan(req)
	log.Printf("[itinerary] %s: modes %v, %d candidates", short(hash), p.modes, len(p.candidates))

	var deadline time.Time
	if budget := o.budget(req); budget > 0 {
		deadline = start.Add(budget)
	}
	res, err := o.run(ctx, req, p.candidates, deadline)
	if err != nil {
		log.Printf("[itinerary] %s: %s: %v", short(hash), models.ErrorTypeOptimization, err)
		return failure(hash, models.ErrorTypeOptimization, fmt.Sprintf("optimization failed: %v", err))
	}

	resp := &models.OptimizationResponse{
		Success:     true,
		RequestHash: hash,
		RequestID:   utils.GetUUID(),
	}
	for _, mode := range p.modes {
		switch mode {
		case models.SearchNormal:
			resp.Normal = &models.NormalSearchResults{MonthlyOptions: []models.MonthlyOptions{}}
		case models.SearchRanges:
			resp.Ranges = &models.ResultsBlock{Results: []models.ItineraryResponse{}}
		case models.SearchFixedDates:
			resp.FixedDates = &models.ResultsBlock{Results: []models.ItineraryResponse{}}
		}
	}
	if resp.Normal != nil {
		resp.Normal.MonthlyOptions = groupMonths(p, res.itineraries)
	}

	var all []*models.ItineraryResponse
	for i, it := range res.itineraries {
		if it == nil {
			continue
		}
		all = append(all, it)
		switch p.candidates[i].searchType {
		case models.SearchRanges:
			resp.Ranges.Results = append(resp.Ranges.Results, *it)
		case models.SearchFixedDates:
			resp.FixedDates.Results = append(resp.FixedDates.Results, *it)
		}
	}

	best := BestItinerary(all)
	meta := &models.OptimizationMetadata{
		ProcessingTimeMS:   o.opts.Now().Sub(start).Milliseconds(),
		HotelsSearched:     res.stats.HotelsSearched,
		PriceQueries:       res.stats.PriceQueries,
		TimeBudgetExceeded: res.skipped > 0,
		CandidatesSkipped:  res.skipped,
	}
	for _, it := range all {
		meta.AlternativesGenerated += it.AlternativesGenerated
	}
	if best != nil {
		cp := *best
		resp.BestItinerary = &cp
		cost := best.TotalCost
		meta.BestCostFound = &cost
	}
	resp.Metadata = meta
	resp.FiltersApplied = map[string]any{
		"search_types":     p.modes,
		"custom":           req.Custom,
		"currency":         req.Currency,
		"guests":           req.Guests,
		"top_k":            req.TopK,
		"hotel_change":     req.HotelChange,
		"preferred_hotels": req.PreferredHotels,
	}
	resp.Message = summary(resp, len(all), p.modes)
	if res.skipped > 0 {
		log.Printf("[itinerary] %s: stopped early (budget %v, ctx err %v), %d candidates skipped", short(hash), o.budget(req), ctx.Err(), res.skipped)
	}
	return resp
}

// budget is the request's soft time budget after the server-wide cap.
func (o *Optimizer) budget(req models.OptimizationRequest) time.Duration {
	b := time.Duration(req.MaxOptimizationTimeMS) * time.Millisecond
	if limit := o.opts.MaxTimeBudget; limit > 0 && (b == 0 || b > limit) {
		return limit
	}
	return b
}

func groupMonths(p plan, itineraries []*models.ItineraryResponse) []models.MonthlyOptions {
	grouped := make([]models.MonthlyOptions, len(p.months))
	for mi, m := range p.months {
		grouped[mi].Month = m.Month
	}
	for i, c := range p.candidates {
		it := itineraries[i]
		if it == nil || c.searchType != models.SearchNormal {
			continue
		}
		g := &grouped[c.month]
		switch c.label {
		case LabelStartMonth:
			g.StartMonth = it
		case LabelMidMonth:
			g.MidMonth = it
		case LabelEndMonth:
			g.EndMonth = it
		}
	}
	out := []models.MonthlyOptions{}
	for _, g := range grouped {
		if len(g.Options()) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// BestItinerary returns the cheapest itinerary, the earliest start winning
// ties. It returns nil for an empty list.
func BestItinerary(its []*models.ItineraryResponse) *models.ItineraryResponse {
	var best *models.ItineraryResponse
	for _, it := range its {
		if it == nil {
			continue
		}
		if best == nil || it.TotalCost < best.TotalCost ||
			(it.TotalCost == best.TotalCost && it.StartDate.Before(best.StartDate)) {
			best = it
		}
	}
	return best
}

func summary(resp *models.OptimizationResponse, n int, modes []string) string {
	if n == 0 {
		return "No itinerary could be priced for the requested dates"
	}
	if len(modes) == 1 && modes[0] == models.SearchNormal {
		return fmt.Sprintf("Found %d itinerary options across %d months", n, len(resp.Normal.MonthlyOptions))
	}
	return fmt.Sprintf("Found %d total itinerary options across %d search types", n, len(modes))
}

func failure(hash, errType, msg string) *models.OptimizationResponse {
	return &models.OptimizationResponse{
		Success:     false,
		RequestHash: hash,
		Message:     msg,
		Errors:      []models.ItineraryError{{Type: errType, Message: msg}},
	}
}

func short(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
