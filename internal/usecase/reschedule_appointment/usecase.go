package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonScheduling/internal/availability"
	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
	"github.com/m04kA/SMC-SalonScheduling/internal/integrations/events"
	"github.com/m04kA/SMC-SalonScheduling/pkg/txmanager"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// UseCase use case для переноса записи на другие дату и время
type UseCase struct {
	appointmentRepo AppointmentRepository
	blockedRepo     BlockedRepository
	policies        PolicyProvider
	changePolicy    domain.ChangePolicy
	locker          ScopeLocker
	txManager       TransactionManager
	publisher       EventPublisher
	lockTimeout     time.Duration
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	blockedRepo BlockedRepository,
	policies PolicyProvider,
	changePolicy domain.ChangePolicy,
	locker ScopeLocker,
	txManager TransactionManager,
	publisher EventPublisher,
	lockTimeout time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		blockedRepo:     blockedRepo,
		policies:        policies,
		changePolicy:    changePolicy,
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

// Execute переносит запись. Новый интервал проверяется под блокировкой области
// (сотрудник, новая дата) без учета самой записи; ID и статус сохраняются.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: tenant=%s, id=%s, date=%s, time=%s",
		req.TenantID, req.ID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}
	date := domain.DateOnly(req.Date)

	// 2. Получаем запись
	current, err := uc.appointmentRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		if errors.Is(err, storage.ErrAppointmentNotFound) {
			uc.logger.Warn("RescheduleAppointment: appointment id=%s not found", req.ID)
			return nil, fmt.Errorf("%w: id=%s", ErrAppointmentNotFound, req.ID)
		}
		uc.logger.Error("RescheduleAppointment: failed to get appointment id=%s: %v", req.ID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	// 3. Переносить можно только pending и confirmed
	if !current.CanBeRescheduled() {
		uc.logger.Warn("RescheduleAppointment: appointment id=%s has status %s", req.ID, current.Status)
		return nil, fmt.Errorf("%w: cannot reschedule %s appointment", ErrInvalidTransition, current.Status)
	}

	// 4. Получаем календарную политику салона
	policy, err := uc.policies.PolicyFor(ctx, req.TenantID)
	if err != nil {
		uc.logger.Error("RescheduleAppointment: failed to get policy for tenant=%s: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}

	// 5. Политика изменений (минимальный срок до начала записи)
	change := domain.Change{
		Kind:        domain.ChangeReschedule,
		Appointment: current,
		StartsAt:    current.StartsAt(policy.Location()),
		Now:         uc.timeProvider.Now(),
	}
	if err := uc.changePolicy.Allow(change); err != nil {
		uc.logger.Warn("RescheduleAppointment: change rejected for id=%s: %v", req.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrChangeNotAllowed, err)
	}

	// 6. Новый интервал с прежней длительностью
	want, err := domain.NewInterval(req.StartTime, current.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if want.End > types.MinutesPerDay {
		return nil, fmt.Errorf("%w: appointment must end on the same day", ErrSlotUnavailable)
	}

	// 7. Захватываем область (сотрудник, новая дата)
	key := domain.ScopeKey(req.TenantID, current.EmployeeID, date)
	unlock, err := uc.lockScope(ctx, key)
	if err != nil {
		uc.logger.Warn("RescheduleAppointment: scope %s is busy: %v", key, err)
		return nil, fmt.Errorf("%w: %v", ErrBusy, err)
	}
	defer unlock()

	var result *domain.Appointment

	// 8. Повторная проверка и обновление в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := uc.appointmentRepo.LockScope(txCtx, key); err != nil {
			uc.logger.Error("RescheduleAppointment: failed to lock scope %s: %v", key, err)
			return wrapTxErr("failed to lock scope", err)
		}

		now := uc.timeProvider.Now()

		if !policy.IsBookableDate(date, now) {
			uc.logger.Warn("RescheduleAppointment: date %s is outside booking window", date.Format(domain.DateFormat))
			return fmt.Errorf("%w: date %s is outside booking window", ErrSlotUnavailable, date.Format(domain.DateFormat))
		}

		working := policy.WorkingIntervals(date.Weekday())
		if len(working) == 0 {
			uc.logger.Warn("RescheduleAppointment: salon is closed on %s", date.Format(domain.DateFormat))
			return fmt.Errorf("%w: salon is closed on %s", ErrSlotUnavailable, date.Format(domain.DateFormat))
		}

		blocks, err := uc.blockedRepo.ListByEmployeeDate(txCtx, req.TenantID, current.EmployeeID, date)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to get blocked times: %v", err)
			return wrapTxErr("failed to get blocked times", err)
		}

		appointments, err := uc.appointmentRepo.ListByEmployeeDate(txCtx, req.TenantID, current.EmployeeID, date)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to get appointments: %v", err)
			return wrapTxErr("failed to get appointments", err)
		}

		// 8.1. Сама запись свой старый интервал не занимает
		day := availability.NewDay(working, blocks, appointments, current.ID)
		if !day.Accepts(want, policy.EarliestStart(date, now)) {
			uc.logger.Warn("RescheduleAppointment: interval %s is not available on %s", want, date.Format(domain.DateFormat))
			return fmt.Errorf("%w: %s on %s", ErrSlotUnavailable, want, date.Format(domain.DateFormat))
		}

		// 8.2. Условное обновление: параллельная отмена не будет перезаписана
		moved, err := uc.appointmentRepo.Reschedule(txCtx, req.TenantID, req.ID, date, req.StartTime)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrAppointmentNotFound):
				return fmt.Errorf("%w: id=%s", ErrAppointmentNotFound, req.ID)
			case errors.Is(err, storage.ErrStatusConflict):
				uc.logger.Warn("RescheduleAppointment: status changed concurrently for id=%s: %v", req.ID, err)
				return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
			case errors.Is(err, storage.ErrOverlap):
				uc.logger.Warn("RescheduleAppointment: store rejected overlap: %v", err)
				return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
			}
			uc.logger.Error("RescheduleAppointment: failed to reschedule id=%s: %v", req.ID, err)
			return wrapTxErr("failed to reschedule appointment", err)
		}

		result = moved
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("RescheduleAppointment: serialization conflict on scope %s: %v", key, err)
			return nil, fmt.Errorf("%w: concurrent booking", ErrSlotUnavailable)
		}
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidTransition) ||
			errors.Is(err, domain.ErrSlotUnavailable) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("RescheduleAppointment: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("RescheduleAppointment: appointment id=%s moved to %s %s",
		result.ID, result.Date.Format(domain.DateFormat), result.StartTime)

	// 9. Публикуем событие
	event := events.NewAppointmentEvent(events.TypeAppointmentRescheduled, result, nil, uc.timeProvider.Now())
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Error("RescheduleAppointment: failed to publish event for id=%s: %v", result.ID, err)
	}

	return &Response{Appointment: result}, nil
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
