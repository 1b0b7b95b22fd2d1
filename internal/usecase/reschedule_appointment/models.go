package reschedule_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// Request модель запроса на перенос записи
type Request struct {
	TenantID  string           // ID салона
	ID        string           // ID записи
	Date      time.Time        // Новая дата
	StartTime types.TimeString // Новое время начала
}

// Response перенесенная запись: ID и статус сохраняются
type Response struct {
	Appointment *domain.Appointment
}
