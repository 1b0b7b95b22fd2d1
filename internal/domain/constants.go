package domain

import "time"

// Default calendar values (08:00-20:00 grid with 30 minute steps)
const (
	DefaultSlotGranularityMinutes  = 30
	DefaultWorkdayStart            = "08:00"
	DefaultWorkdayEnd              = "20:00"
	DefaultMinBookingNoticeMinutes = 0
	DefaultAdvanceBookingDays      = 0 // 0 = unlimited
)

// Business validation constants
const (
	MinSlotGranularityMinutes = 5
	MaxSlotGranularityMinutes = 240
	MaxServiceDurationMinutes = 720
	MaxNotesLength            = 500
	MaxReasonLength           = 500
	MaxClientNameLength       = 200
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DateOnly drops the clock part and keeps the calendar day as UTC midnight.
// Appointment and block dates are civil dates, independent of any timezone.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD into a civil date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// ScopeKey identifies the (employee, date) serialization scope
func ScopeKey(tenantID, employeeID string, date time.Time) string {
	return tenantID + "|" + employeeID + "|" + date.Format(DateFormat)
}
