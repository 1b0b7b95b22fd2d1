// Package calendar holds the working-hours policy of a tenant.
//
// A Policy is immutable once built and safe for concurrent use. Configuration
// errors (overlapping or inverted working intervals, bad granularity, unknown
// timezone) are reported by NewPolicy and never surface at query time.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// ErrInvalidPolicy is returned when a policy cannot be built from its settings
var ErrInvalidPolicy = errors.New("calendar: invalid policy")

// WorkingHours one working interval [Start, End) of a day
type WorkingHours struct {
	Start types.TimeString
	End   types.TimeString
}

// Settings raw policy values as they come from configuration.
// A nil Week means every day uses the default 08:00-20:00 interval;
// a non-nil Week closes every day it does not mention.
type Settings struct {
	Timezone                string
	GranularityMinutes      int
	Week                    map[time.Weekday][]WorkingHours
	MinBookingNoticeMinutes int
	AdvanceBookingDays      int
}

// Policy working hours, slot grid and booking window of a tenant
type Policy struct {
	location    *time.Location
	granularity int
	week        map[time.Weekday][]domain.Interval
	minNotice   int
	advanceDays int
}

// NewPolicy validates settings and builds a Policy
func NewPolicy(s Settings) (*Policy, error) {
	loc := time.UTC
	if s.Timezone != "" {
		l, err := time.LoadLocation(s.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidPolicy, s.Timezone, err)
		}
		loc = l
	}

	granularity := s.GranularityMinutes
	if granularity == 0 {
		granularity = domain.DefaultSlotGranularityMinutes
	}
	if granularity < domain.MinSlotGranularityMinutes || granularity > domain.MaxSlotGranularityMinutes {
		return nil, fmt.Errorf("%w: granularity %d must be within [%d, %d]",
			ErrInvalidPolicy, granularity, domain.MinSlotGranularityMinutes, domain.MaxSlotGranularityMinutes)
	}
	if s.MinBookingNoticeMinutes < 0 {
		return nil, fmt.Errorf("%w: min booking notice must not be negative", ErrInvalidPolicy)
	}
	if s.AdvanceBookingDays < 0 {
		return nil, fmt.Errorf("%w: advance booking days must not be negative", ErrInvalidPolicy)
	}

	week := s.Week
	if week == nil {
		week = DefaultWeek()
	}

	p := &Policy{
		location:    loc,
		granularity: granularity,
		week:        make(map[time.Weekday][]domain.Interval, 7),
		minNotice:   s.MinBookingNoticeMinutes,
		advanceDays: s.AdvanceBookingDays,
	}

	for day, hours := range week {
		if day < time.Sunday || day > time.Saturday {
			return nil, fmt.Errorf("%w: unknown weekday %d", ErrInvalidPolicy, day)
		}
		intervals, err := buildDay(hours)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPolicy, strings.ToLower(day.String()), err)
		}
		p.week[day] = intervals
	}

	return p, nil
}

// MustPolicy builds a Policy and panics on invalid settings (tests, defaults)
func MustPolicy(s Settings) *Policy {
	p, err := NewPolicy(s)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultPolicy UTC, 30 minute grid, every day 08:00-20:00
func DefaultPolicy() *Policy {
	return MustPolicy(Settings{})
}

// DefaultWeek every day of the week open 08:00-20:00
func DefaultWeek() map[time.Weekday][]WorkingHours {
	week := make(map[time.Weekday][]WorkingHours, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		week[d] = []WorkingHours{{
			Start: types.TimeString(domain.DefaultWorkdayStart),
			End:   types.TimeString(domain.DefaultWorkdayEnd),
		}}
	}
	return week
}

func buildDay(hours []WorkingHours) ([]domain.Interval, error) {
	intervals := make([]domain.Interval, 0, len(hours))
	for _, h := range hours {
		start, end := h.Start.Minutes(), h.End.Minutes()
		if start < 0 || end < 0 {
			return nil, fmt.Errorf("malformed interval %s-%s", h.Start, h.End)
		}
		if start >= end {
			return nil, fmt.Errorf("interval %s-%s is empty or inverted", h.Start, h.End)
		}
		intervals = append(intervals, domain.Interval{Start: start, End: end})
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})

	merged := intervals[:0]
	for _, iv := range intervals {
		n := len(merged)
		if n > 0 && iv.Overlaps(merged[n-1]) {
			return nil, fmt.Errorf("intervals %s and %s overlap", merged[n-1], iv)
		}
		// 09:00-12:00 и 12:00-15:00 склеиваются в один рабочий интервал
		if n > 0 && iv.Start == merged[n-1].End {
			merged[n-1].End = iv.End
			continue
		}
		merged = append(merged, iv)
	}
	return merged, nil
}

// WorkingIntervals ordered working intervals of the weekday, nil when closed
func (p *Policy) WorkingIntervals(day time.Weekday) []domain.Interval {
	src := p.week[day]
	if len(src) == 0 {
		return nil
	}
	out := make([]domain.Interval, len(src))
	copy(out, src)
	return out
}

// Granularity slot step in minutes
func (p *Policy) Granularity() int {
	return p.granularity
}

// Location tenant timezone
func (p *Policy) Location() *time.Location {
	return p.location
}

// MinBookingNoticeMinutes minimal distance between now and a bookable start
func (p *Policy) MinBookingNoticeMinutes() int {
	return p.minNotice
}

// AdvanceBookingDays how far ahead booking is open, 0 = unlimited
func (p *Policy) AdvanceBookingDays() int {
	return p.advanceDays
}

// Today current civil date in the tenant timezone
func (p *Policy) Today(now time.Time) time.Time {
	return domain.DateOnly(now.In(p.location))
}

// IsBookableDate reports whether date lies inside [today, today+advance]
func (p *Policy) IsBookableDate(date, now time.Time) bool {
	today := p.Today(now)
	date = domain.DateOnly(date)
	if date.Before(today) {
		return false
	}
	if p.advanceDays == 0 {
		return true
	}
	return !date.After(today.AddDate(0, 0, p.advanceDays))
}

// EarliestStart minute of day from which starts on date are allowed.
// A start t passes only if the instant date+t is strictly after now plus the
// minimal notice. Returns 0 when the whole day is in the future and
// MinutesPerDay when nothing on date can be booked any more.
func (p *Policy) EarliestStart(date, now time.Time) int {
	threshold := now.In(p.location).Add(time.Duration(p.minNotice) * time.Minute)
	thresholdDate := domain.DateOnly(threshold)
	date = domain.DateOnly(date)

	switch {
	case date.After(thresholdDate):
		return 0
	case date.Before(thresholdDate):
		return types.MinutesPerDay
	}

	// now 10:00:30 also rules out the 10:00 start
	seconds := threshold.Hour()*3600 + threshold.Minute()*60 + threshold.Second()
	return seconds/60 + 1
}
