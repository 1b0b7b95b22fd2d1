package reschedule_appointment

import (
	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/service/appointments/models"
	rescheduleAppointment "github.com/m04kA/SMC-SalonScheduling/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	Date      string `json:"date"`      // "2026-05-05"
	StartTime string `json:"startTime"` // "14:30"
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleRequest) ToUseCaseRequest(tenantID, id string) (*rescheduleAppointment.Request, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &rescheduleAppointment.Request{
		TenantID:  tenantID,
		ID:        id,
		Date:      date,
		StartTime: startTime,
	}, nil
}

// FromUseCaseResponse отдает запись в том же формате, что и остальные ручки записей
func FromUseCaseResponse(resp *rescheduleAppointment.Response) *models.AppointmentResponse {
	return models.FromDomainAppointment(resp.Appointment)
}
