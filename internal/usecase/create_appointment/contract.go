package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonScheduling/internal/calendar"
	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/integrations/events"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	// ListByEmployeeDate получает активные записи сотрудника на дату (FOR UPDATE внутри транзакции)
	ListByEmployeeDate(ctx context.Context, tenantID, employeeID string, date time.Time) ([]*domain.Appointment, error)
	// LockScope блокирует область (сотрудник, дата) до конца транзакции
	LockScope(ctx context.Context, key string) error
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

// ScopeLocker интерфейс блокировки области (сотрудник, дата) внутри процесса
type ScopeLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher интерфейс публикации событий жизненного цикла записи
type EventPublisher interface {
	Publish(ctx context.Context, event events.AppointmentEvent) error
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
