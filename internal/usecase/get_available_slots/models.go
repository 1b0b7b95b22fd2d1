package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	TenantID   string    // ID салона
	EmployeeID string    // ID сотрудника
	ServiceID  string    // ID услуги
	Date       time.Time // Дата (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time          // Дата, на которую запрашивались слоты
	EmployeeID      string             // ID сотрудника
	ServiceID       string             // ID услуги
	DurationMinutes int                // Длительность услуги
	Slots           []types.TimeString // Время начала доступных слотов по возрастанию
}
