package datewin

import (
	"fmt"
	"log"
	"slices"

	"wayfare/models"
)

// Day-of-month anchors of the monthly sampler.
const (
	startOfMonthDay = 5
	midOfMonthDay   = 15
	endOfMonthDay   = 25

	// monthsAhead is how many months after the first sampled month are considered.
	monthsAhead = 2
)

// MonthSlice holds the sampled start, mid and end plans of one calendar
// month. Any of them may be nil.
type MonthSlice struct {
	Month string
	Start *models.ConsecutiveAssignment
	Mid   *models.ConsecutiveAssignment
	End   *models.ConsecutiveAssignment
}

// Count returns how many options the month carries.
func (m MonthSlice) Count() int {
	n := 0
	for _, a := range []*models.ConsecutiveAssignment{m.Start, m.Mid, m.End} {
		if a != nil {
			n++
		}
	}
	return n
}

// GenerateMonthlySlices samples up to three calendar months, beginning with
// the month of the later of the range start and today. Each month offers a
// plan starting around the 5th, the 15th and the 25th; options that start
// before today or leave the global range are skipped and empty months are
// dropped.
func (c *Calculator) GenerateMonthlySlices(global models.DateRange, dests []models.DestinationRequest) []MonthSlice {
	if len(dests) == 0 || totalNights(dests) > global.Days() {
		log.Printf("[datewin] trip too long for date range %s..%s", global.Start, global.End)
		return nil
	}

	today := c.today()
	first := models.MaxDate(global.Start, today).FirstOfMonth()

	var out []MonthSlice
	for i := 0; i <= monthsAhead; i++ {
		month := first.AddMonths(i)
		if month.After(global.End) {
			break
		}
		ms := MonthSlice{Month: fmt.Sprintf("%s %d", month.Month(), month.Year())}
		endDay := min(endOfMonthDay, month.DaysInMonth())
		ms.Start = c.sliceOption(global, dests, today, month.AddDays(startOfMonthDay-1))
		ms.Mid = c.sliceOption(global, dests, today, month.AddDays(midOfMonthDay-1))
		ms.End = c.sliceOption(global, dests, today, month.AddDays(endDay-1))
		if ms.Count() == 0 {
			continue
		}
		out = append(out, ms)
	}
	log.Printf("[datewin] generated %d monthly slices", len(out))
	return out
}

func (c *Calculator) sliceOption(global models.DateRange, dests []models.DestinationRequest, today, start models.Date) *models.ConsecutiveAssignment {
	if start.Before(today) || start.Before(global.Start) {
		return nil
	}
	a := BuildAssignment(dests, start)
	if a.EndDate.After(global.End) {
		return nil
	}
	return &a
}

// GenerateRangeAssignments slides a window over every caller supplied range,
// taking at most topK plans from each, and returns them ordered by start date.
func (c *Calculator) GenerateRangeAssignments(ranges []models.DateRange, dests []models.DestinationRequest, topK int) []models.ConsecutiveAssignment {
	if topK <= 0 {
		return nil
	}
	var all []models.ConsecutiveAssignment
	for _, r := range ranges {
		n := 0
		for a := range c.GenerateConsecutiveAssignments(r, dests, topK) {
			all = append(all, a)
			n++
		}
		log.Printf("[datewin] range %s..%s: %d assignments", r.Start, r.End, n)
	}
	slices.SortStableFunc(all, func(a, b models.ConsecutiveAssignment) int {
		return a.StartDate.Time().Compare(b.StartDate.Time())
	})
	return all
}

// GenerateFixedDateAssignments builds exactly one plan per fixed start date.
// Dates whose plan would not fit inside the global range are omitted.
func (c *Calculator) GenerateFixedDateAssignments(global models.DateRange, fixed []models.Date, dests []models.DestinationRequest) []models.ConsecutiveAssignment {
	if len(dests) == 0 || totalNights(dests) > global.Days() {
		return nil
	}
	var out []models.ConsecutiveAssignment
	for _, d := range fixed {
		a := BuildAssignment(dests, d)
		if a.StartDate.Before(global.Start) || a.EndDate.After(global.End) {
			log.Printf("[datewin] fixed date %s: plan %s..%s leaves range %s..%s, skipped", d, a.StartDate, a.EndDate, global.Start, global.End)
			continue
		}
		out = append(out, a)
	}
	log.Printf("[datewin] generated %d fixed date assignments", len(out))
	return out
}

// DefaultRanges derives three overlapping sub-ranges (early, mid, late, each
// about 40% of the span) for ranges search when the caller supplied none.
// Short ranges of a week or less are returned unchanged.
func DefaultRanges(global models.DateRange) []models.DateRange {
	total := global.Days()
	if total <= 7 {
		return []models.DateRange{global}
	}
	at := func(tenths int) models.Date {
		return global.Start.AddDays(total * tenths / 10)
	}
	return []models.DateRange{
		{Start: global.Start, End: at(4)},
		{Start: at(3), End: at(7)},
		{Start: at(6), End: global.End},
	}
}
