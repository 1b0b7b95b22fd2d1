package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
)

// Type тип события жизненного цикла записи
type Type string

const (
	TypeAppointmentCreated       Type = "appointment.created"
	TypeAppointmentRescheduled   Type = "appointment.rescheduled"
	TypeAppointmentStatusChanged Type = "appointment.status_changed"
	TypeAppointmentCancelled     Type = "appointment.cancelled"
)

// AppointmentEvent событие для внешних потребителей (уведомления, аналитика)
type AppointmentEvent struct {
	ID             string              `json:"event_id"`
	Type           Type                `json:"event_type"`
	OccurredAt     time.Time           `json:"occurred_at"`
	PreviousStatus *string             `json:"previous_status,omitempty"`
	Appointment    AppointmentSnapshot `json:"appointment"`
}

// AppointmentSnapshot состояние записи на момент события
type AppointmentSnapshot struct {
	ID              string  `json:"id"`
	TenantID        string  `json:"tenant_id"`
	ServiceID       string  `json:"service_id"`
	EmployeeID      string  `json:"employee_id"`
	Date            string  `json:"date"`
	StartTime       string  `json:"start_time"`
	DurationMinutes int     `json:"duration_minutes"`
	Status          string  `json:"status"`
	ClientName      string  `json:"client_name"`
	ClientEmail     string  `json:"client_email"`
	ClientPhone     *string `json:"client_phone,omitempty"`
	ServiceName     string  `json:"service_name"`
	ServicePrice    float64 `json:"service_price"`
}

// NewAppointmentEvent собирает событие из записи
func NewAppointmentEvent(eventType Type, appt *domain.Appointment, previous *domain.AppointmentStatus, now time.Time) AppointmentEvent {
	event := AppointmentEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: now.UTC(),
		Appointment: AppointmentSnapshot{
			ID:              appt.ID,
			TenantID:        appt.TenantID,
			ServiceID:       appt.ServiceID,
			EmployeeID:      appt.EmployeeID,
			Date:            appt.Date.Format(domain.DateFormat),
			StartTime:       appt.StartTime.String(),
			DurationMinutes: appt.DurationMinutes,
			Status:          string(appt.Status),
			ClientName:      appt.ClientName,
			ClientEmail:     appt.ClientEmail,
			ClientPhone:     appt.ClientPhone,
			ServiceName:     appt.ServiceName,
			ServicePrice:    appt.ServicePrice,
		},
	}
	if previous != nil {
		s := string(*previous)
		event.PreviousStatus = &s
	}
	return event
}
