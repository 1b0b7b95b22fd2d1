package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	TenantID    string           // ID салона
	EmployeeID  string           // ID сотрудника
	ServiceID   string           // ID услуги
	Date        time.Time        // Дата записи (без времени)
	StartTime   types.TimeString // Время начала (например, "10:00")
	ClientName  string           // Имя клиента
	ClientEmail string           // Email клиента
	ClientPhone *string          // Телефон клиента (опционально)
	Notes       *string          // Дополнительные заметки (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	ID              string           // ID записи (UUID)
	TenantID        string           // ID салона
	EmployeeID      string           // ID сотрудника
	ServiceID       string           // ID услуги
	Date            time.Time        // Дата записи
	StartTime       types.TimeString // Время начала
	DurationMinutes int              // Длительность в минутах
	Status          string           // Статус записи

	// Денормализованные данные
	ServiceName  string  // Название услуги
	ServicePrice float64 // Цена услуги

	ClientName  string  // Имя клиента
	ClientEmail string  // Email клиента
	ClientPhone *string // Телефон клиента
	Notes       *string // Заметки

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
