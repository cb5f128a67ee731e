// Package datewin turns a global travel window and an ordered list of
// destinations into concrete consecutive date plans.
//
// Every stop occupies Nights consecutive calendar days (one per night); the
// next stop starts the day after the previous stop's last night. The
// generators never fail: when the requested nights do not fit they yield
// nothing.
package datewin

import (
	"fmt"
	"iter"
	"log"
	"time"

	"wayfare/models"
)

// DefaultMaxCombinations bounds GenerateConsecutiveAssignments when the
// caller passes a non-positive limit.
const DefaultMaxCombinations = 1000

// Calculator generates date plans. Now is used by the monthly sampler to
// skip options in the past.
type Calculator struct {
	Now func() time.Time
}

// New returns a Calculator backed by the wall clock.
func New() *Calculator {
	return &Calculator{Now: time.Now}
}

func (c *Calculator) today() models.Date {
	if c == nil || c.Now == nil {
		return models.DateOf(time.Now())
	}
	return models.DateOf(c.Now())
}

// Validation is the structured result of ValidateDateConstraints.
type Validation struct {
	Valid       bool     `json:"valid"`
	TotalNights int      `json:"total_nights"`
	RangeDays   int      `json:"range_days"`
	BufferDays  int      `json:"buffer_days"`
	Warnings    []string `json:"warnings"`
	Errors      []string `json:"errors"`
}

// ValidateDateConstraints checks whether the destinations fit inside the
// global range. It reports problems instead of returning an error.
func (c *Calculator) ValidateDateConstraints(global models.DateRange, dests []models.DestinationRequest) Validation {
	total := totalNights(dests)
	days := global.Days()
	v := Validation{
		Valid:       true,
		TotalNights: total,
		RangeDays:   days,
		BufferDays:  days - total,
		Warnings:    []string{},
		Errors:      []string{},
	}

	if len(dests) == 0 {
		v.Valid = false
		v.Errors = append(v.Errors, "At least one destination is required")
	}
	if total > days {
		v.Valid = false
		v.Errors = append(v.Errors, fmt.Sprintf("Total nights (%d) exceeds date range (%d days)", total, days))
	}
	if days-total < 2 {
		v.Warnings = append(v.Warnings, "Very tight date constraints - limited flexibility")
	}
	for _, d := range dests {
		if d.Nights > 14 {
			v.Warnings = append(v.Warnings, fmt.Sprintf("Destination %d has long stay (%d nights)", d.DestinationID, d.Nights))
		}
	}
	return v
}

// DestinationWindow is the span of feasible start days for one stop.
type DestinationWindow struct {
	DestinationID int
	AreaID        *int
	Nights        int
	Order         int
	EarliestStart models.Date
	LatestStart   models.Date
}

// WindowDays is the number of feasible start days.
func (w DestinationWindow) WindowDays() int {
	return w.EarliestStart.DaysUntil(w.LatestStart) + 1
}

// CalculateDestinationWindows returns, for every stop, the earliest start
// (all earlier stops packed at the range start) and the latest start (all
// later stops packed at the range end). It returns nil when any window is
// inverted.
func (c *Calculator) CalculateDestinationWindows(global models.DateRange, dests []models.DestinationRequest) []DestinationWindow {
	if len(dests) == 0 {
		return nil
	}
	total := totalNights(dests)
	if total > global.Days() {
		log.Printf("[datewin] total nights (%d) exceed global span (%d)", total, global.Days())
		return nil
	}

	windows := make([]DestinationWindow, 0, len(dests))
	before := 0
	for i, d := range dests {
		after := total - before - d.Nights
		earliest := global.Start.AddDays(before)
		latest := global.End.AddDays(-(d.Nights + after - 1))
		if latest.Before(earliest) {
			log.Printf("[datewin] no valid window for destination %d", d.DestinationID)
			return nil
		}
		windows = append(windows, DestinationWindow{
			DestinationID: d.DestinationID,
			AreaID:        d.AreaID,
			Nights:        d.Nights,
			Order:         i,
			EarliestStart: earliest,
			LatestStart:   latest,
		})
		before += d.Nights
	}
	return windows
}

// GenerateConsecutiveAssignments yields one plan per feasible first-stop
// start day, earliest first, stopping after maxCombinations plans. The
// sequence is lazy and can be ranged over any number of times.
func (c *Calculator) GenerateConsecutiveAssignments(global models.DateRange, dests []models.DestinationRequest, maxCombinations int) iter.Seq[models.ConsecutiveAssignment] {
	if maxCombinations <= 0 {
		maxCombinations = DefaultMaxCombinations
	}
	return func(yield func(models.ConsecutiveAssignment) bool) {
		if len(dests) == 0 {
			return
		}
		total := totalNights(dests)
		if total > global.Days() {
			return
		}
		latestFirst := global.End.AddDays(-(total - 1))
		generated := 0
		for start := global.Start; !start.After(latestFirst) && generated < maxCombinations; start = start.AddDays(1) {
			a := BuildAssignment(dests, start)
			if a.EndDate.After(global.End) {
				continue
			}
			generated++
			if !yield(a) {
				return
			}
		}
	}
}

// BuildAssignment chains the destinations starting on start.
func BuildAssignment(dests []models.DestinationRequest, start models.Date) models.ConsecutiveAssignment {
	a := models.ConsecutiveAssignment{
		Stops:     make([]models.Stop, 0, len(dests)),
		StartDate: start,
	}
	cur := start
	for _, d := range dests {
		end := cur.AddDays(d.Nights - 1)
		a.Stops = append(a.Stops, models.Stop{
			DestinationID: d.DestinationID,
			AreaID:        d.AreaID,
			Nights:        d.Nights,
			StartDate:     cur,
			EndDate:       end,
		})
		a.TotalNights += d.Nights
		cur = end.AddDays(1)
	}
	if len(a.Stops) > 0 {
		a.EndDate = a.Stops[len(a.Stops)-1].EndDate
	}
	return a
}

func totalNights(dests []models.DestinationRequest) int {
	total := 0
	for _, d := range dests {
		total += d.Nights
	}
	return total
}
