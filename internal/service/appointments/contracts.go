package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonScheduling/internal/calendar"
	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/integrations/events"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	// UpdateStatus меняет статус, только если текущий равен from
	UpdateStatus(ctx context.Context, tenantID, id string, from, to domain.AppointmentStatus) (*domain.Appointment, error)
}

// PolicyProvider интерфейс поставщика календарной политики арендатора
type PolicyProvider interface {
	PolicyFor(ctx context.Context, tenantID string) (*calendar.Policy, error)
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

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}
