package blocked

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
	"github.com/m04kA/SMC-SalonScheduling/internal/service/blocked/models"
	"github.com/m04kA/SMC-SalonScheduling/pkg/ptr"
)

// Service реестр блокировок времени сотрудников.
// Блокировки могут пересекаться, при расчете доступности учитываются все.
type Service struct {
	blockedRepo BlockedRepository
	catalogRepo CatalogRepository
	locker      ScopeLocker
	txManager   TransactionManager
	lockTimeout time.Duration
	logger      Logger
}

// NewService создает новый экземпляр сервиса блокировок
func NewService(
	blockedRepo BlockedRepository,
	catalogRepo CatalogRepository,
	locker ScopeLocker,
	txManager TransactionManager,
	lockTimeout time.Duration,
	logger Logger,
) *Service {
	return &Service{
		blockedRepo: blockedRepo,
		catalogRepo: catalogRepo,
		locker:      locker,
		txManager:   txManager,
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// Add создает блокировку времени сотрудника
func (s *Service) Add(ctx context.Context, tenantID string, req *models.BlockedTimeRequest) (*models.BlockedTimeResponse, error) {
	s.logger.Info("Add: blocking employee=%s on %s for tenant=%s",
		req.EmployeeID, req.Date.Format(domain.DateFormat), tenantID)

	// 1. Валидируем входные данные
	block := req.ToDomain(tenantID)
	if err := s.validate(block); err != nil {
		s.logger.Warn("Add: validation failed: %v", err)
		return nil, err
	}

	// 2. Сотрудник должен существовать и быть активным
	if err := s.checkEmployee(ctx, "Add", tenantID, block.EmployeeID); err != nil {
		return nil, err
	}

	block.ID = uuid.NewString()

	// 3. Сохраняем под блокировкой области, чтобы не разминуться с новой записью
	var created *domain.BlockedInterval
	err := s.withScope(ctx, block, func(txCtx context.Context) error {
		var err error
		created, err = s.blockedRepo.Create(txCtx, block)
		return err
	})
	if err != nil {
		return nil, s.mapErr("Add", block.ID, err)
	}

	s.logger.Info("Add: successfully created blocked time id=%s (%s) reason=%q",
		created.ID, created.Interval(), ptr.Deref(created.Reason))
	return models.FromDomainBlockedTime(created), nil
}

// Update заменяет дату, интервал и причину блокировки
func (s *Service) Update(ctx context.Context, tenantID, id string, req *models.BlockedTimeRequest) (*models.BlockedTimeResponse, error) {
	s.logger.Info("Update: updating blocked time id=%s for tenant=%s", id, tenantID)

	block := req.ToDomain(tenantID)
	block.ID = id
	if err := s.validate(block); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	if _, err := s.blockedRepo.GetByID(ctx, tenantID, id); err != nil {
		return nil, s.mapErr("Update", id, err)
	}

	if err := s.checkEmployee(ctx, "Update", tenantID, block.EmployeeID); err != nil {
		return nil, err
	}

	var updated *domain.BlockedInterval
	err := s.withScope(ctx, block, func(txCtx context.Context) error {
		var err error
		updated, err = s.blockedRepo.Update(txCtx, block)
		return err
	})
	if err != nil {
		return nil, s.mapErr("Update", id, err)
	}

	s.logger.Info("Update: successfully updated blocked time id=%s", id)
	return models.FromDomainBlockedTime(updated), nil
}

// Remove удаляет блокировку
func (s *Service) Remove(ctx context.Context, tenantID, id string) error {
	s.logger.Info("Remove: deleting blocked time id=%s for tenant=%s", id, tenantID)

	if err := s.blockedRepo.Delete(ctx, tenantID, id); err != nil {
		return s.mapErr("Remove", id, err)
	}

	s.logger.Info("Remove: successfully deleted blocked time id=%s", id)
	return nil
}

// List блокировки сотрудника на дату
func (s *Service) List(ctx context.Context, tenantID, employeeID string, date time.Time) (*models.BlockedTimeListResponse, error) {
	s.logger.Info("List: fetching blocked times for employee=%s on %s", employeeID, date.Format(domain.DateFormat))

	list, err := s.blockedRepo.ListByEmployeeDate(ctx, tenantID, employeeID, domain.DateOnly(date))
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBlockedTimeList(list), nil
}

// ListByTenant блокировки салона с фильтрацией по сотруднику и периоду
func (s *Service) ListByTenant(ctx context.Context, req *models.ListBlockedTimesRequest) (*models.BlockedTimeListResponse, error) {
	s.logger.Info("ListByTenant: fetching blocked times for tenant=%s", req.TenantID)

	if req.DateFrom != nil && req.DateTo != nil && req.DateFrom.After(*req.DateTo) {
		return nil, fmt.Errorf("%w: dateFrom is after dateTo", ErrInvalidInput)
	}

	list, err := s.blockedRepo.List(ctx, req.ToDomainFilter())
	if err != nil {
		s.logger.Error("ListByTenant: repository error for tenant=%s: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: ListByTenant - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByTenant: successfully fetched %d blocked times for tenant=%s", len(list), req.TenantID)
	return models.FromDomainBlockedTimeList(list), nil
}

// Вспомогательные методы

func (s *Service) validate(block *domain.BlockedInterval) error {
	if strings.TrimSpace(block.EmployeeID) == "" {
		return fmt.Errorf("%w: employeeId is required", ErrInvalidInput)
	}
	if block.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if block.Reason != nil && utf8.RuneCountInString(*block.Reason) > domain.MaxReasonLength {
		return fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}
	if err := block.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (s *Service) checkEmployee(ctx context.Context, op, tenantID, employeeID string) error {
	employee, err := s.catalogRepo.GetEmployee(ctx, tenantID, employeeID)
	if err != nil {
		if errors.Is(err, storage.ErrEmployeeNotFound) {
			s.logger.Warn("%s: employee id=%s not found", op, employeeID)
			return fmt.Errorf("%w: id=%s", ErrEmployeeNotFound, employeeID)
		}
		s.logger.Error("%s: failed to get employee id=%s: %v", op, employeeID, err)
		return fmt.Errorf("%w: %s - failed to get employee: %v", ErrInternal, op, err)
	}
	if !employee.IsActive {
		s.logger.Warn("%s: employee id=%s is inactive", op, employeeID)
		return fmt.Errorf("%w: id=%s is inactive", ErrEmployeeNotFound, employeeID)
	}
	return nil
}

// withScope выполняет fn под блокировкой области (сотрудник, дата) блокировки
func (s *Service) withScope(ctx context.Context, block *domain.BlockedInterval, fn func(ctx context.Context) error) error {
	key := domain.ScopeKey(block.TenantID, block.EmployeeID, block.Date)

	lockCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.lockTimeout > 0 {
		lockCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
	}
	unlock, err := s.locker.Lock(lockCtx, key)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBusy, err)
	}
	defer unlock()

	return s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.blockedRepo.LockScope(txCtx, key); err != nil {
			return err
		}
		return fn(txCtx)
	})
}

func (s *Service) mapErr(op, id string, err error) error {
	switch {
	case errors.Is(err, storage.ErrBlockedTimeNotFound):
		s.logger.Warn("%s: blocked time id=%s not found", op, id)
		return fmt.Errorf("%w: id=%s", ErrBlockedTimeNotFound, id)
	case errors.Is(err, ErrBusy):
		s.logger.Warn("%s: %v", op, err)
		return err
	}
	s.logger.Error("%s: repository error for blocked time id=%s: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
