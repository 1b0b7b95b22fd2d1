package domain

import (
	"fmt"

	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// Interval half-open time range [Start, End) in minutes since midnight
type Interval struct {
	Start int
	End   int
}

// NewInterval builds an interval from a start time and a duration in minutes
func NewInterval(start types.TimeString, durationMinutes int) (Interval, error) {
	m := start.Minutes()
	if m < 0 {
		return Interval{}, fmt.Errorf("%w: invalid start time %q", ErrInvalidInput, start)
	}
	if durationMinutes <= 0 {
		return Interval{}, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}
	return Interval{Start: m, End: m + durationMinutes}, nil
}

// Duration returns the length in minutes
func (i Interval) Duration() int {
	return i.End - i.Start
}

// IsEmpty returns true for zero-length or inverted intervals
func (i Interval) IsEmpty() bool {
	return i.End <= i.Start
}

// Overlaps reports whether two half-open intervals intersect.
// Touching intervals ([9,10) and [10,11)) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// Contains reports whether o lies fully inside i
func (i Interval) Contains(o Interval) bool {
	return i.Start <= o.Start && o.End <= i.End
}

// String formats the interval as HH:MM-HH:MM
func (i Interval) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", i.Start/60, i.Start%60, i.End/60, i.End%60)
}
