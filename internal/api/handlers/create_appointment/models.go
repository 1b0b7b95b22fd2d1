package create_appointment

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	createAppointment "github.com/m04kA/SMC-SalonScheduling/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid start time")
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	EmployeeID  string  `json:"employeeId"`
	ServiceID   string  `json:"serviceId"`
	Date        string  `json:"date"`      // "2026-05-04"
	StartTime   string  `json:"startTime"` // "10:00"
	ClientName  string  `json:"clientName"`
	ClientEmail string  `json:"clientEmail"`
	ClientPhone *string `json:"clientPhone,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employeeId"`
	ServiceID       string  `json:"serviceId"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	ServiceName     string  `json:"serviceName"`
	ServicePrice    float64 `json:"servicePrice"`
	ClientName      string  `json:"clientName"`
	ClientEmail     string  `json:"clientEmail"`
	ClientPhone     *string `json:"clientPhone,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(tenantID string) (*createAppointment.Request, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidDate, err)
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidTime, err)
	}

	return &createAppointment.Request{
		TenantID:    tenantID,
		EmployeeID:  r.EmployeeID,
		ServiceID:   r.ServiceID,
		Date:        date,
		StartTime:   startTime,
		ClientName:  r.ClientName,
		ClientEmail: r.ClientEmail,
		ClientPhone: r.ClientPhone,
		Notes:       r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	end := resp.StartTime.Minutes() + resp.DurationMinutes

	return &AppointmentResponse{
		ID:              resp.ID,
		EmployeeID:      resp.EmployeeID,
		ServiceID:       resp.ServiceID,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         fmt.Sprintf("%02d:%02d", end/60, end%60),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		ServiceName:     resp.ServiceName,
		ServicePrice:    resp.ServicePrice,
		ClientName:      resp.ClientName,
		ClientEmail:     resp.ClientEmail,
		ClientPhone:     resp.ClientPhone,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
