// Package availability derives free time of an employee on a date.
//
// All intervals are half-open minute ranges of one calendar day. The same Day
// value answers both questions the engine asks: which starts to offer a client
// and whether a concrete requested interval may be committed.
package availability

import (
	"sort"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// Day free sub-intervals of one (employee, date) scope
type Day struct {
	working []domain.Interval
	free    []domain.Interval
}

// NewDay subtracts blocks and occupied appointment intervals from working hours.
// Cancelled appointments and the appointment with id excludeID are ignored, so a
// rescheduled appointment never conflicts with itself.
func NewDay(
	working []domain.Interval,
	blocks []*domain.BlockedInterval,
	appointments []*domain.Appointment,
	excludeID string,
) Day {
	busy := make([]domain.Interval, 0, len(blocks)+len(appointments))
	for _, b := range blocks {
		busy = append(busy, b.Interval())
	}
	for _, a := range appointments {
		if !a.IsActive() || (excludeID != "" && a.ID == excludeID) {
			continue
		}
		busy = append(busy, a.Occupied())
	}

	return Day{
		working: normalize(working),
		free:    Subtract(working, busy),
	}
}

// Free remaining free sub-intervals, ascending
func (d Day) Free() []domain.Interval {
	out := make([]domain.Interval, len(d.free))
	copy(out, d.free)
	return out
}

// Slots candidate starts on the grid anchored at each working interval start.
// Touching working intervals are merged first, so Slots and Accepts agree.
// A start is kept when [start, start+duration) lies inside one free
// sub-interval and start >= earliest.
func (d Day) Slots(granularity, duration, earliest int) []types.TimeString {
	slots := make([]types.TimeString, 0)
	if granularity <= 0 || duration <= 0 {
		return slots
	}

	for _, w := range d.working {
		for start := w.Start; start+duration <= w.End; start += granularity {
			if start < earliest {
				continue
			}
			if !Fits(d.free, domain.Interval{Start: start, End: start + duration}) {
				continue
			}
			ts, err := types.NewTimeStringFromMinutes(start)
			if err != nil {
				continue
			}
			slots = append(slots, ts)
		}
	}
	return slots
}

// Accepts reports whether want may be committed: it fits a free sub-interval
// and does not start before earliest
func (d Day) Accepts(want domain.Interval, earliest int) bool {
	if want.IsEmpty() || want.Start < earliest {
		return false
	}
	return Fits(d.free, want)
}

// Fits reports whether want lies entirely inside one of free
func Fits(free []domain.Interval, want domain.Interval) bool {
	for _, f := range free {
		if f.Contains(want) {
			return true
		}
	}
	return false
}

// Subtract removes every cut from base and returns the ordered remainder
func Subtract(base []domain.Interval, cuts []domain.Interval) []domain.Interval {
	result := normalize(base)
	for _, cut := range cuts {
		if cut.IsEmpty() {
			continue
		}
		next := make([]domain.Interval, 0, len(result)+1)
		for _, r := range result {
			if !r.Overlaps(cut) {
				next = append(next, r)
				continue
			}
			if r.Start < cut.Start {
				next = append(next, domain.Interval{Start: r.Start, End: cut.Start})
			}
			if cut.End < r.End {
				next = append(next, domain.Interval{Start: cut.End, End: r.End})
			}
		}
		result = next
	}
	return result
}

// normalize drops empty intervals, sorts and merges overlapping ones
func normalize(in []domain.Interval) []domain.Interval {
	out := make([]domain.Interval, 0, len(in))
	for _, iv := range in {
		if !iv.IsEmpty() {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})

	merged := out[:0]
	for _, iv := range out {
		if n := len(merged); n > 0 && iv.Start <= merged[n-1].End {
			if iv.End > merged[n-1].End {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}
