package domain

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// Appointment represents a client booking of one service with one employee
type Appointment struct {
	ID         string
	TenantID   string
	ServiceID  string
	EmployeeID string
	Date       time.Time // calendar day, UTC midnight
	StartTime  types.TimeString
	// DurationMinutes is snapshotted from the service at creation time
	DurationMinutes int
	Status          AppointmentStatus

	ClientName  string
	ClientEmail string
	ClientPhone *string
	Notes       *string

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64

	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Occupied returns the half-open interval the appointment reserves
func (a *Appointment) Occupied() Interval {
	start := a.StartTime.Minutes()
	return Interval{Start: start, End: start + a.DurationMinutes}
}

// IsActive returns true if the appointment still reserves its interval
func (a *Appointment) IsActive() bool {
	return a.Status.OccupiesSlot()
}

// IsCancelled returns true if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// CanBeRescheduled returns true if date/time may still change
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status.CanReschedule()
}

// StartsAt returns the absolute start instant in the given location
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	m := a.StartTime.Minutes()
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), m/60, m%60, 0, 0, loc)
}

// Clone returns a deep copy safe to hand out of a store
func (a *Appointment) Clone() *Appointment {
	if a == nil {
		return nil
	}
	c := *a
	if a.ClientPhone != nil {
		v := *a.ClientPhone
		c.ClientPhone = &v
	}
	if a.Notes != nil {
		v := *a.Notes
		c.Notes = &v
	}
	if a.CancelledAt != nil {
		v := *a.CancelledAt
		c.CancelledAt = &v
	}
	return &c
}

// AppointmentFilter filter for listing tenant appointments
type AppointmentFilter struct {
	TenantID   string             // Required
	EmployeeID *string            // Optional
	DateFrom   *time.Time         // Inclusive, optional
	DateTo     *time.Time         // Inclusive, optional
	Status     *AppointmentStatus // Optional
}

// Matches applies the filter to a single appointment
func (f AppointmentFilter) Matches(a *Appointment) bool {
	if a.TenantID != f.TenantID {
		return false
	}
	if f.EmployeeID != nil && a.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.DateFrom != nil && a.Date.Before(DateOnly(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && a.Date.After(DateOnly(*f.DateTo)) {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	return true
}
