package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonScheduling/internal/calendar"
	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// ListByEmployeeDate получает активные записи сотрудника на дату
	ListByEmployeeDate(ctx context.Context, tenantID, employeeID string, date time.Time) ([]*domain.Appointment, error)
}

// BlockedRepository интерфейс репозитория блокировок времени
type BlockedRepository interface {
	ListByEmployeeDate(ctx context.Context, tenantID, employeeID string, date time.Time) ([]*domain.BlockedInterval, error)
}

// CatalogRepository интерфейс каталога услуг и сотрудников
type CatalogRepository interface {
	GetEmployee(ctx context.Context, tenantID, id string) (*domain.Employee, error)
	GetService(ctx context.Context, tenantID, id string) (*domain.Service, error)
}

// PolicyProvider интерфейс поставщика календарной политики арендатора
type PolicyProvider interface {
	PolicyFor(ctx context.Context, tenantID string) (*calendar.Policy, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
