package blocked

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
)

// BlockedRepository интерфейс репозитория блокировок времени
type BlockedRepository interface {
	Create(ctx context.Context, block *domain.BlockedInterval) (*domain.BlockedInterval, error)
	GetByID(ctx context.Context, tenantID, id string) (*domain.BlockedInterval, error)
	Update(ctx context.Context, block *domain.BlockedInterval) (*domain.BlockedInterval, error)
	Delete(ctx context.Context, tenantID, id string) error
	ListByEmployeeDate(ctx context.Context, tenantID, employeeID string, date time.Time) ([]*domain.BlockedInterval, error)
	List(ctx context.Context, filter domain.BlockedFilter) ([]*domain.BlockedInterval, error)
	LockScope(ctx context.Context, key string) error
}

// CatalogRepository интерфейс каталога сотрудников
type CatalogRepository interface {
	GetEmployee(ctx context.Context, tenantID, id string) (*domain.Employee, error)
}

// ScopeLocker интерфейс блокировки области (сотрудник, дата) внутри процесса
type ScopeLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
