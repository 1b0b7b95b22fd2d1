package domain

import "fmt"

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// transitions is the only place where allowed status changes are declared
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// AllStatuses lists every known status in lifecycle order
var AllStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
}

// OccupyingStatuses statuses whose appointments reserve their interval
var OccupyingStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}

// ReschedulableStatuses statuses from which date/time may change
var ReschedulableStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}

// ParseStatus converts a raw string into a known status
func ParseStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(s)
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
	}
	return status, nil
}

// IsValid returns true for a known status
func (s AppointmentStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal returns true if no transition leaves the status
func (s AppointmentStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// OccupiesSlot returns true if an appointment in this status blocks its interval
func (s AppointmentStatus) OccupiesSlot() bool {
	return s.IsValid() && s != StatusCancelled
}

// CanReschedule returns true if date/time may change in this status
func (s AppointmentStatus) CanReschedule() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransition reports whether from -> to is declared in the transition table
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates from -> to and returns ErrInvalidTransition otherwise
func Transition(from, to AppointmentStatus) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown target status %q", ErrInvalidTransition, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
