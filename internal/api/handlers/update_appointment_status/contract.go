package update_appointment_status

import (
	"context"

	"github.com/m04kA/SMC-SalonScheduling/internal/service/appointments/models"
)

type AppointmentService interface {
	UpdateStatus(ctx context.Context, tenantID, id string, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
