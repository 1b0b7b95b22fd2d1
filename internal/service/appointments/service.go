package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
	"github.com/m04kA/SMC-SalonScheduling/internal/integrations/events"
	"github.com/m04kA/SMC-SalonScheduling/internal/service/appointments/models"
)

// Service сервис жизненного цикла записей: чтение, смена статуса, отмена
type Service struct {
	appointmentRepo AppointmentRepository
	policies        PolicyProvider
	changePolicy    domain.ChangePolicy
	publisher       EventPublisher
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	policies PolicyProvider,
	changePolicy domain.ChangePolicy,
	publisher EventPublisher,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		policies:        policies,
		changePolicy:    changePolicy,
		publisher:       publisher,
		timeProvider:    realTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает запись по ID в пределах салона
func (s *Service) GetByID(ctx context.Context, tenantID, id string) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%s for tenant=%s", id, tenantID)

	appt, err := s.get(ctx, "GetByID", tenantID, id)
	if err != nil {
		return nil, err
	}

	return models.FromDomainAppointment(appt), nil
}

// List получает записи салона с фильтрацией по сотруднику, периоду и статусу.
// Результат отсортирован по дате и времени начала.
func (s *Service) List(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	logMsg := fmt.Sprintf("List: fetching appointments for tenant=%s", req.TenantID)
	if req.EmployeeID != nil {
		logMsg += fmt.Sprintf(", employee=%s", *req.EmployeeID)
	}
	if req.DateFrom != nil || req.DateTo != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", formatDate(req.DateFrom), formatDate(req.DateTo))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	s.logger.Info(logMsg)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter for tenant=%s: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	list, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error for tenant=%s: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d appointments for tenant=%s", len(list), req.TenantID)
	return models.FromDomainAppointmentList(list), nil
}

// UpdateStatus меняет статус по таблице переходов.
// Переход в cancelled выполняется по правилам отмены.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, id string, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: updating appointment id=%s to status=%s", id, req.Status)

	// Валидируем и конвертируем статус
	next, err := domain.ParseStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%s", req.Status, id)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if next == domain.StatusCancelled {
		return s.Cancel(ctx, tenantID, id)
	}

	current, err := s.get(ctx, "UpdateStatus", tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := domain.Transition(current.Status, next); err != nil {
		s.logger.Warn("UpdateStatus: appointment id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	// Compare-and-set: статус мог измениться параллельно
	updated, err := s.appointmentRepo.UpdateStatus(ctx, tenantID, id, current.Status, next)
	if err != nil {
		return nil, s.mapUpdateErr("UpdateStatus", id, err)
	}

	s.logger.Info("UpdateStatus: successfully updated appointment id=%s %s -> %s", id, current.Status, next)
	s.publish(ctx, events.TypeAppointmentStatusChanged, updated, current.Status)

	return models.FromDomainAppointment(updated), nil
}

// Cancel отменяет запись. Повторная отмена ничего не меняет,
// завершенную запись отменить нельзя.
func (s *Service) Cancel(ctx context.Context, tenantID, id string) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%s for tenant=%s", id, tenantID)

	current, err := s.get(ctx, "Cancel", tenantID, id)
	if err != nil {
		return nil, err
	}

	if current.IsCancelled() {
		s.logger.Info("Cancel: appointment id=%s is already cancelled", id)
		return models.FromDomainAppointment(current), nil
	}

	if err := domain.Transition(current.Status, domain.StatusCancelled); err != nil {
		s.logger.Warn("Cancel: appointment id=%s cannot be cancelled, status=%s", id, current.Status)
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	// Политика изменений (минимальный срок до начала записи)
	policy, err := s.policies.PolicyFor(ctx, tenantID)
	if err != nil {
		s.logger.Error("Cancel: failed to get policy for tenant=%s: %v", tenantID, err)
		return nil, fmt.Errorf("%w: Cancel - failed to get policy: %v", ErrInternal, err)
	}
	change := domain.Change{
		Kind:        domain.ChangeCancel,
		Appointment: current,
		StartsAt:    current.StartsAt(policy.Location()),
		Now:         s.timeProvider.Now(),
	}
	if err := s.changePolicy.Allow(change); err != nil {
		s.logger.Warn("Cancel: change rejected for id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: %v", ErrChangeNotAllowed, err)
	}

	cancelled, err := s.appointmentRepo.UpdateStatus(ctx, tenantID, id, current.Status, domain.StatusCancelled)
	if err != nil {
		if errors.Is(err, storage.ErrStatusConflict) {
			// Параллельная отмена уже выполнена - результат тот же
			if again, getErr := s.get(ctx, "Cancel", tenantID, id); getErr == nil && again.IsCancelled() {
				return models.FromDomainAppointment(again), nil
			}
		}
		return nil, s.mapUpdateErr("Cancel", id, err)
	}

	s.logger.Info("Cancel: successfully cancelled appointment id=%s", id)
	s.publish(ctx, events.TypeAppointmentCancelled, cancelled, current.Status)

	return models.FromDomainAppointment(cancelled), nil
}

// Вспомогательные методы

func (s *Service) get(ctx context.Context, op, tenantID, id string) (*domain.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, storage.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%s not found", op, id)
			return nil, fmt.Errorf("%w: id=%s", ErrAppointmentNotFound, id)
		}
		s.logger.Error("%s: repository error for appointment id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appt, nil
}

func (s *Service) mapUpdateErr(op, id string, err error) error {
	switch {
	case errors.Is(err, storage.ErrAppointmentNotFound):
		s.logger.Warn("%s: appointment id=%s not found during update", op, id)
		return fmt.Errorf("%w: id=%s", ErrAppointmentNotFound, id)
	case errors.Is(err, storage.ErrStatusConflict):
		s.logger.Warn("%s: status of appointment id=%s changed concurrently: %v", op, id, err)
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	s.logger.Error("%s: repository error for appointment id=%s: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// publish отправляет событие; ошибка только логируется
func (s *Service) publish(ctx context.Context, eventType events.Type, appt *domain.Appointment, previous domain.AppointmentStatus) {
	event := events.NewAppointmentEvent(eventType, appt, &previous, s.timeProvider.Now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("publish: failed to publish %s for id=%s: %v", eventType, appt.ID, err)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(domain.DateFormat)
}
