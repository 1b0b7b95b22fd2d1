package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// BlockedInterval is an administrator-declared unavailability window of an employee
type BlockedInterval struct {
	ID         string
	TenantID   string
	EmployeeID string
	Date       time.Time // calendar day, UTC midnight
	WholeDay   bool
	StartTime  *types.TimeString // nil when WholeDay
	EndTime    *types.TimeString // nil when WholeDay, exclusive
	Reason     *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the whole_day / explicit interval invariant
func (b *BlockedInterval) Validate() error {
	if b.WholeDay {
		if b.StartTime != nil || b.EndTime != nil {
			return fmt.Errorf("%w: whole-day block must not carry start/end", ErrInvalidInput)
		}
		return nil
	}
	if b.StartTime == nil || b.EndTime == nil {
		return fmt.Errorf("%w: partial block requires start and end", ErrInvalidInput)
	}
	if err := b.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: start: %v", ErrInvalidInput, err)
	}
	if err := b.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: end: %v", ErrInvalidInput, err)
	}
	if !b.StartTime.IsBefore(*b.EndTime) {
		return fmt.Errorf("%w: block start must be before end", ErrInvalidInput)
	}
	return nil
}

// Interval returns the blocked minutes. A whole-day block covers the full day.
func (b *BlockedInterval) Interval() Interval {
	if b.WholeDay || b.StartTime == nil || b.EndTime == nil {
		return Interval{Start: 0, End: types.MinutesPerDay}
	}
	return Interval{Start: b.StartTime.Minutes(), End: b.EndTime.Minutes()}
}

// Clone returns a deep copy safe to hand out of a store
func (b *BlockedInterval) Clone() *BlockedInterval {
	if b == nil {
		return nil
	}
	c := *b
	if b.StartTime != nil {
		v := *b.StartTime
		c.StartTime = &v
	}
	if b.EndTime != nil {
		v := *b.EndTime
		c.EndTime = &v
	}
	if b.Reason != nil {
		v := *b.Reason
		c.Reason = &v
	}
	return &c
}

// BlockedFilter filter for listing blocked intervals
type BlockedFilter struct {
	TenantID   string
	EmployeeID *string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Matches applies the filter to a single block
func (f BlockedFilter) Matches(b *BlockedInterval) bool {
	if b.TenantID != f.TenantID {
		return false
	}
	if f.EmployeeID != nil && b.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.DateFrom != nil && b.Date.Before(DateOnly(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && b.Date.After(DateOnly(*f.DateTo)) {
		return false
	}
	return true
}
