// Package calendar expands weekly class patterns into dated occurrences.
//
// Everything here is pure: no storage, no clocks, no logging.
package calendar

import (
	"iter"
	"math"
	"time"
)

// Occurrence is one dated meeting produced from a weekly slot.
type Occurrence struct {
	SlotIndex int
	Slot      WeeklySlot
	Start     time.Time
	End       time.Time
}

// Expand turns weekly slots into dated occurrences between start and end.
//
// Dates are computed in start's location. start is used at date granularity;
// the date of end is inclusive. If end carries a time of day, a meeting on
// that date is only produced when it starts at or before that time. A
// date-only end (midnight) includes the whole day.
//
// Occurrences are yielded slot by slot, each slot in chronological order.
// The returned sequence is finite and can be ranged over more than once.
// start after end yields nothing.
func Expand(slots []WeeklySlot, start, end time.Time) (iter.Seq[Occurrence], error) {
	if err := ValidateSlots(slots); err != nil {
		return nil, err
	}

	loc := start.Location()
	end = end.In(loc)
	startDate := dateOf(start)
	endDate := dateOf(end)
	endClock := TimeOfDay(end.Hour()*60 + end.Minute())
	dateOnlyEnd := end.Equal(endDate)

	// copy so later mutation by the caller does not leak into the sequence
	own := make([]WeeklySlot, len(slots))
	copy(own, slots)

	return func(yield func(Occurrence) bool) {
		if startDate.After(endDate) {
			return
		}
		for i, slot := range own {
			offset := (slot.DayOfWeek - int(startDate.Weekday()) + 7) % 7
			for day := startDate.AddDate(0, 0, offset); !day.After(endDate); day = day.AddDate(0, 0, 7) {
				if day.Equal(endDate) && !dateOnlyEnd && slot.StartTime > endClock {
					break
				}
				occ := Occurrence{
					SlotIndex: i,
					Slot:      slot,
					Start:     slot.StartTime.On(day),
					End:       slot.EndTime.On(day),
				}
				if !yield(occ) {
					return
				}
			}
		}
	}, nil
}

// MaxOccurrencesPerSlot is the upper bound on meetings any single slot can
// produce for the window.
func MaxOccurrencesPerSlot(start, end time.Time) int {
	startDate := dateOf(start)
	endDate := dateOf(end.In(start.Location()))
	if startDate.After(endDate) {
		return 0
	}
	days := math.Round(endDate.Sub(startDate).Hours() / 24)
	return int(math.Ceil(days/7)) + 1
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Collect expands slots and gathers every occurrence into a slice.
func Collect(slots []WeeklySlot, start, end time.Time) ([]Occurrence, error) {
	seq, err := Expand(slots, start, end)
	if err != nil {
		return nil, err
	}
	var out []Occurrence
	for occ := range seq {
		out = append(out, occ)
	}
	return out, nil
}

// WeeksBetween returns the number of calendar weeks touched by the window.
func WeeksBetween(start, end time.Time) int {
	startDate := dateOf(start)
	endDate := dateOf(end.In(start.Location()))
	if startDate.After(endDate) {
		return 0
	}
	days := int(math.Round(endDate.Sub(startDate).Hours()/24)) + 1
	return (days + 6) / 7
}
