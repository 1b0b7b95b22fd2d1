package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonScheduling/internal/availability"
	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// UseCase use case для получения доступных слотов сотрудника
type UseCase struct {
	appointmentRepo AppointmentRepository
	blockedRepo     BlockedRepository
	catalogRepo     CatalogRepository
	policies        PolicyProvider
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	blockedRepo BlockedRepository,
	catalogRepo CatalogRepository,
	policies PolicyProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		blockedRepo:     blockedRepo,
		catalogRepo:     catalogRepo,
		policies:        policies,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения доступных слотов.
// Только чтение: блокировки области не берутся.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: tenant=%s, employee=%s, service=%s, date=%s",
		req.TenantID, req.EmployeeID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}
	date := domain.DateOnly(req.Date)

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем сотрудника
	employee, err := uc.catalogRepo.GetEmployee(ctx, req.TenantID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, storage.ErrEmployeeNotFound) {
			uc.logger.Warn("GetAvailableSlots: employee id=%s not found", req.EmployeeID)
			return nil, fmt.Errorf("%w: id=%s", ErrEmployeeNotFound, req.EmployeeID)
		}
		uc.logger.Error("GetAvailableSlots: failed to get employee id=%s: %v", req.EmployeeID, err)
		return nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
	}

	// 4. Получаем услугу
	service, err := uc.catalogRepo.GetService(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		if errors.Is(err, storage.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%s not found", req.ServiceID)
			return nil, fmt.Errorf("%w: id=%s", ErrServiceNotFound, req.ServiceID)
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 5. Проверяем, что сотрудник может оказать услугу
	if err := domain.CheckEligibility(employee, service); err != nil {
		uc.logger.Warn("GetAvailableSlots: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrNotEligible, err)
	}

	response := &Response{
		Date:            date,
		EmployeeID:      req.EmployeeID,
		ServiceID:       req.ServiceID,
		DurationMinutes: service.DurationMinutes,
		Slots:           []types.TimeString{},
	}

	// 6. Получаем календарную политику салона
	policy, err := uc.policies.PolicyFor(ctx, req.TenantID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get policy for tenant=%s: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}

	// 7. Прошедшие даты и даты за горизонтом записи - пустой результат, не ошибка
	if !policy.IsBookableDate(date, now) {
		uc.logger.Info("GetAvailableSlots: date %s is outside booking window", date.Format(domain.DateFormat))
		return response, nil
	}

	// 8. Рабочие интервалы дня недели
	working := policy.WorkingIntervals(date.Weekday())
	if len(working) == 0 {
		uc.logger.Info("GetAvailableSlots: salon is closed on %s", date.Format(domain.DateFormat))
		return response, nil
	}

	// 9. Блокировки времени сотрудника
	blocks, err := uc.blockedRepo.ListByEmployeeDate(ctx, req.TenantID, req.EmployeeID, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get blocked times: %v", err)
		return nil, fmt.Errorf("%w: failed to get blocked times: %v", ErrInternal, err)
	}

	// 10. Активные записи сотрудника
	appointments, err := uc.appointmentRepo.ListByEmployeeDate(ctx, req.TenantID, req.EmployeeID, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 11. Свободные интервалы и слоты по сетке
	day := availability.NewDay(working, blocks, appointments, "")
	response.Slots = day.Slots(policy.Granularity(), service.DurationMinutes, policy.EarliestStart(date, now))

	uc.logger.Info("GetAvailableSlots: %d slots for employee=%s, service=%s, date=%s",
		len(response.Slots), req.EmployeeID, req.ServiceID, date.Format(domain.DateFormat))

	return response, nil
}
