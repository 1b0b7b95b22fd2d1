package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
)

// Request модели

// UpdateStatusRequest запрос на смену статуса записи
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListAppointmentsRequest запрос на получение записей салона
type ListAppointmentsRequest struct {
	TenantID   string     `json:"-"`
	EmployeeID *string    `json:"employeeId,omitempty"` // Фильтр по сотруднику (опционально)
	DateFrom   *time.Time `json:"dateFrom,omitempty"`   // Начало периода, включительно (опционально)
	DateTo     *time.Time `json:"dateTo,omitempty"`     // Конец периода, включительно (опционально)
	Status     *string    `json:"status,omitempty"`     // Фильтр по статусу (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentFilter, error) {
	filter := domain.AppointmentFilter{
		TenantID:   r.TenantID,
		EmployeeID: r.EmployeeID,
		DateFrom:   r.DateFrom,
		DateTo:     r.DateTo,
	}

	if r.DateFrom != nil && r.DateTo != nil && r.DateFrom.After(*r.DateTo) {
		return filter, fmt.Errorf("%w: dateFrom is after dateTo", domain.ErrInvalidInput)
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := domain.ParseStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              string `json:"id"`
	EmployeeID      string `json:"employeeId"`
	ServiceID       string `json:"serviceId"`
	Date            string `json:"date"`      // "2026-05-04"
	StartTime       string `json:"startTime"` // "10:00"
	EndTime         string `json:"endTime"`   // "11:00"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	ClientName  string  `json:"clientName"`
	ClientEmail string  `json:"clientEmail"`
	ClientPhone *string `json:"clientPhone,omitempty"`
	Notes       *string `json:"notes,omitempty"`

	// Денормализованные данные
	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`

	CancelledAt *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	occupied := a.Occupied()
	resp := &AppointmentResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		ServiceID:       a.ServiceID,
		Date:            a.Date.Format(domain.DateFormat),
		StartTime:       a.StartTime.String(),
		EndTime:         fmt.Sprintf("%02d:%02d", occupied.End/60, occupied.End%60),
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		ClientName:      a.ClientName,
		ClientEmail:     a.ClientEmail,
		ClientPhone:     a.ClientPhone,
		Notes:           a.Notes,
		ServiceName:     a.ServiceName,
		ServicePrice:    a.ServicePrice,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(list)),
	}

	for _, appt := range list {
		if item := FromDomainAppointment(appt); item != nil {
			resp.Appointments = append(resp.Appointments, *item)
		}
	}

	return resp
}
