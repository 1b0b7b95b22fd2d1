package domain

import "errors"

// Error taxonomy of the scheduling engine. Packages wrap these with context
// (fmt.Errorf("%w: ...", ErrX)) and transports map them with errors.Is.
var (
	// ErrNotFound unknown tenant entity: employee, service, appointment, blocked interval
	ErrNotFound = errors.New("not found")

	// ErrEligibility employee is inactive or does not perform the service
	ErrEligibility = errors.New("employee is not eligible for the service")

	// ErrSlotUnavailable requested interval is not free (lost race or real conflict)
	ErrSlotUnavailable = errors.New("slot is unavailable")

	// ErrInvalidTransition status or reschedule rule violation
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrChangeNotAllowed change policy rejected a reschedule or cancellation
	ErrChangeNotAllowed = errors.New("change is not allowed by policy")

	// ErrInvalidInput malformed request data
	ErrInvalidInput = errors.New("invalid input")

	// ErrBusy the serialization scope could not be acquired in time; nothing was applied
	ErrBusy = errors.New("scheduling scope is busy")
)
