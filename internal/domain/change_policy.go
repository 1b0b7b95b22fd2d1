package domain

import (
	"fmt"
	"time"
)

// ChangeKind kind of client-initiated change of an existing appointment
type ChangeKind string

const (
	ChangeReschedule ChangeKind = "reschedule"
	ChangeCancel     ChangeKind = "cancel"
)

// Change describes a requested change at the moment it is evaluated
type Change struct {
	Kind        ChangeKind
	Appointment *Appointment
	StartsAt    time.Time // absolute start in the tenant timezone
	Now         time.Time
}

// ChangePolicy decides whether a reschedule or cancellation is still allowed
type ChangePolicy interface {
	Allow(change Change) error
}

// MinNoticePolicy rejects changes closer than Minutes to the appointment start.
// Zero minutes allows every change.
type MinNoticePolicy struct {
	Minutes int
}

// Allow implements ChangePolicy
func (p MinNoticePolicy) Allow(change Change) error {
	if p.Minutes <= 0 {
		return nil
	}
	notice := time.Duration(p.Minutes) * time.Minute
	if change.StartsAt.Sub(change.Now) < notice {
		return fmt.Errorf("%w: %s requires at least %d minutes notice", ErrChangeNotAllowed, change.Kind, p.Minutes)
	}
	return nil
}
