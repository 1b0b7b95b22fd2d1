package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonScheduling/internal/availability"
	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
	"github.com/m04kA/SMC-SalonScheduling/internal/integrations/events"
	"github.com/m04kA/SMC-SalonScheduling/pkg/txmanager"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	blockedRepo     BlockedRepository
	catalogRepo     CatalogRepository
	policies        PolicyProvider
	locker          ScopeLocker
	txManager       TransactionManager
	publisher       EventPublisher
	lockTimeout     time.Duration
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// lockTimeout ограничивает ожидание блокировки области; 0 - ждать до отмены контекста.
func NewUseCase(
	appointmentRepo AppointmentRepository,
	blockedRepo BlockedRepository,
	catalogRepo CatalogRepository,
	policies PolicyProvider,
	locker ScopeLocker,
	txManager TransactionManager,
	publisher EventPublisher,
	lockTimeout time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		blockedRepo:     blockedRepo,
		catalogRepo:     catalogRepo,
		policies:        policies,
		locker:          locker,
		txManager:       txManager,
		publisher:       publisher,
		lockTimeout:     lockTimeout,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания записи.
// Проверка интервала и вставка выполняются под блокировкой области (сотрудник, дата)
// в сериализуемой транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: tenant=%s, employee=%s, service=%s, date=%s, time=%s",
		req.TenantID, req.EmployeeID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}
	date := domain.DateOnly(req.Date)

	// 2. Получаем сотрудника
	employee, err := uc.catalogRepo.GetEmployee(ctx, req.TenantID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, storage.ErrEmployeeNotFound) {
			uc.logger.Warn("CreateAppointment: employee id=%s not found", req.EmployeeID)
			return nil, fmt.Errorf("%w: id=%s", ErrEmployeeNotFound, req.EmployeeID)
		}
		uc.logger.Error("CreateAppointment: failed to get employee id=%s: %v", req.EmployeeID, err)
		return nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
	}

	// 3. Получаем услугу
	service, err := uc.catalogRepo.GetService(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		if errors.Is(err, storage.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%s not found", req.ServiceID)
			return nil, fmt.Errorf("%w: id=%s", ErrServiceNotFound, req.ServiceID)
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Проверяем, что сотрудник может оказать услугу
	if err := domain.CheckEligibility(employee, service); err != nil {
		uc.logger.Warn("CreateAppointment: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrNotEligible, err)
	}

	// 5. Интервал, который займет запись
	want, err := domain.NewInterval(req.StartTime, service.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if want.End > types.MinutesPerDay {
		uc.logger.Warn("CreateAppointment: interval %s crosses midnight", want)
		return nil, fmt.Errorf("%w: appointment must end on the same day", ErrSlotUnavailable)
	}

	// 6. Получаем календарную политику салона
	policy, err := uc.policies.PolicyFor(ctx, req.TenantID)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to get policy for tenant=%s: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}

	// 7. Захватываем область (сотрудник, дата)
	key := domain.ScopeKey(req.TenantID, req.EmployeeID, date)
	unlock, err := uc.lockScope(ctx, key)
	if err != nil {
		uc.logger.Warn("CreateAppointment: scope %s is busy: %v", key, err)
		return nil, fmt.Errorf("%w: %v", ErrBusy, err)
	}
	defer unlock()

	var result *domain.Appointment

	// 8. Повторная проверка и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 8.1. Блокируем область и в БД (advisory lock)
		if err := uc.appointmentRepo.LockScope(txCtx, key); err != nil {
			uc.logger.Error("CreateAppointment: failed to lock scope %s: %v", key, err)
			return wrapTxErr("failed to lock scope", err)
		}

		// 8.2. Время читаем под блокировкой: ожидание могло занять время
		now := uc.timeProvider.Now()

		if !policy.IsBookableDate(date, now) {
			uc.logger.Warn("CreateAppointment: date %s is outside booking window", date.Format(domain.DateFormat))
			return fmt.Errorf("%w: date %s is outside booking window", ErrSlotUnavailable, date.Format(domain.DateFormat))
		}

		// 8.3. Рабочие интервалы дня недели
		working := policy.WorkingIntervals(date.Weekday())
		if len(working) == 0 {
			uc.logger.Warn("CreateAppointment: salon is closed on %s", date.Format(domain.DateFormat))
			return fmt.Errorf("%w: salon is closed on %s", ErrSlotUnavailable, date.Format(domain.DateFormat))
		}

		// 8.4. Блокировки времени сотрудника
		blocks, err := uc.blockedRepo.ListByEmployeeDate(txCtx, req.TenantID, req.EmployeeID, date)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get blocked times: %v", err)
			return wrapTxErr("failed to get blocked times", err)
		}

		// 8.5. Активные записи сотрудника (FOR UPDATE)
		appointments, err := uc.appointmentRepo.ListByEmployeeDate(txCtx, req.TenantID, req.EmployeeID, date)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get appointments: %v", err)
			return wrapTxErr("failed to get appointments", err)
		}

		// 8.6. Интервал должен целиком лежать в свободном промежутке и не в прошлом
		day := availability.NewDay(working, blocks, appointments, "")
		if !day.Accepts(want, policy.EarliestStart(date, now)) {
			uc.logger.Warn("CreateAppointment: interval %s is not available for employee=%s on %s",
				want, req.EmployeeID, date.Format(domain.DateFormat))
			return fmt.Errorf("%w: %s on %s", ErrSlotUnavailable, want, date.Format(domain.DateFormat))
		}

		// 8.7. Создаем запись со снимком длительности и цены услуги
		appt := &domain.Appointment{
			ID:              uuid.NewString(),
			TenantID:        req.TenantID,
			ServiceID:       req.ServiceID,
			EmployeeID:      req.EmployeeID,
			Date:            date,
			StartTime:       req.StartTime,
			DurationMinutes: service.DurationMinutes,
			Status:          domain.StatusPending,
			ClientName:      req.ClientName,
			ClientEmail:     req.ClientEmail,
			ClientPhone:     req.ClientPhone,
			Notes:           req.Notes,
			ServiceName:     service.Name,
			ServicePrice:    service.Price,
		}

		created, err := uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			if errors.Is(err, storage.ErrOverlap) {
				uc.logger.Warn("CreateAppointment: store rejected overlap: %v", err)
				return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
			}
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return wrapTxErr("failed to create appointment", err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("CreateAppointment: serialization conflict on scope %s: %v", key, err)
			return nil, fmt.Errorf("%w: concurrent booking", ErrSlotUnavailable)
		}
		if errors.Is(err, ErrSlotUnavailable) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("CreateAppointment: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%s", result.ID)

	// 9. Публикуем событие; ошибка не откатывает созданную запись
	event := events.NewAppointmentEvent(events.TypeAppointmentCreated, result, nil, uc.timeProvider.Now())
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Error("CreateAppointment: failed to publish event for id=%s: %v", result.ID, err)
	}

	return toResponse(result), nil
}

// lockScope ждет блокировку области не дольше lockTimeout
func (uc *UseCase) lockScope(ctx context.Context, key string) (func(), error) {
	if uc.lockTimeout <= 0 {
		return uc.locker.Lock(ctx, key)
	}
	lockCtx, cancel := context.WithTimeout(ctx, uc.lockTimeout)
	defer cancel()
	return uc.locker.Lock(lockCtx, key)
}

// wrapTxErr оставляет конфликты сериализации как есть, чтобы txmanager повторил транзакцию
func wrapTxErr(op string, err error) error {
	if txmanager.IsSerializationFailure(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

func toResponse(a *domain.Appointment) *Response {
	return &Response{
		ID:              a.ID,
		TenantID:        a.TenantID,
		EmployeeID:      a.EmployeeID,
		ServiceID:       a.ServiceID,
		Date:            a.Date,
		StartTime:       a.StartTime,
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		ServiceName:     a.ServiceName,
		ServicePrice:    a.ServicePrice,
		ClientName:      a.ClientName,
		ClientEmail:     a.ClientEmail,
		ClientPhone:     a.ClientPhone,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
