// Package memory хранилище в памяти процесса. Используется драйвером storage.driver = "memory"
// и в тестах usecase-слоя.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// AppointmentStore арена записей с составным индексом (tenant, employee, date)
type AppointmentStore struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Appointment
	index map[string]map[string]struct{}
	now   func() time.Time
}

// NewAppointmentStore создает пустое хранилище записей
func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{
		byID:  make(map[string]*domain.Appointment),
		index: make(map[string]map[string]struct{}),
		now:   time.Now,
	}
}

// Create сохраняет запись. Пересечение с активной записью того же сотрудника
// на ту же дату отклоняется с storage.ErrOverlap.
func (s *AppointmentStore) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if _, exists := s.byID[appt.ID]; exists {
		return nil, fmt.Errorf("memory: appointment id=%s already exists", appt.ID)
	}

	appt.Date = domain.DateOnly(appt.Date)
	if appt.IsActive() {
		if conflict := s.findOverlap(appt.TenantID, appt.EmployeeID, appt.Date, appt.Occupied(), ""); conflict != "" {
			return nil, fmt.Errorf("%w: conflicts with appointment id=%s", storage.ErrOverlap, conflict)
		}
	}

	now := s.now()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	stored := appt.Clone()
	s.byID[stored.ID] = stored
	s.addToIndex(stored)

	return stored.Clone(), nil
}

// GetByID возвращает запись арендатора
func (s *AppointmentStore) GetByID(_ context.Context, tenantID, id string) (*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appt, ok := s.byID[id]
	if !ok || appt.TenantID != tenantID {
		return nil, storage.ErrAppointmentNotFound
	}
	return appt.Clone(), nil
}

// ListByEmployeeDate активные записи сотрудника на дату, по времени начала
func (s *AppointmentStore) ListByEmployeeDate(_ context.Context, tenantID, employeeID string, date time.Time) ([]*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Appointment, 0)
	for id := range s.index[domain.ScopeKey(tenantID, employeeID, domain.DateOnly(date))] {
		appt := s.byID[id]
		if appt.IsActive() {
			result = append(result, appt.Clone())
		}
	}
	sortAppointments(result)
	return result, nil
}

// List записи арендатора по фильтру, по дате и времени начала
func (s *AppointmentStore) List(_ context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Appointment, 0)
	for _, appt := range s.byID {
		if filter.Matches(appt) {
			result = append(result, appt.Clone())
		}
	}
	sortAppointments(result)
	return result, nil
}

// UpdateStatus меняет статус, только если текущий статус равен from (compare-and-set)
func (s *AppointmentStore) UpdateStatus(
	_ context.Context,
	tenantID, id string,
	from, to domain.AppointmentStatus,
) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.byID[id]
	if !ok || appt.TenantID != tenantID {
		return nil, storage.ErrAppointmentNotFound
	}
	if appt.Status != from {
		return nil, fmt.Errorf("%w: expected %s, got %s", storage.ErrStatusConflict, from, appt.Status)
	}

	now := s.now()
	appt.Status = to
	appt.UpdatedAt = now
	if to == domain.StatusCancelled {
		appt.CancelledAt = &now
	}

	return appt.Clone(), nil
}

// Reschedule переносит запись на новые дату и время, если ее статус все еще
// допускает перенос. Статус и идентификатор не меняются.
func (s *AppointmentStore) Reschedule(
	_ context.Context,
	tenantID, id string,
	date time.Time,
	start types.TimeString,
) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.byID[id]
	if !ok || appt.TenantID != tenantID {
		return nil, storage.ErrAppointmentNotFound
	}
	if !appt.CanBeRescheduled() {
		return nil, fmt.Errorf("%w: status is %s", storage.ErrStatusConflict, appt.Status)
	}

	date = domain.DateOnly(date)
	moved := appt.Clone()
	moved.Date = date
	moved.StartTime = start
	if conflict := s.findOverlap(tenantID, appt.EmployeeID, date, moved.Occupied(), appt.ID); conflict != "" {
		return nil, fmt.Errorf("%w: conflicts with appointment id=%s", storage.ErrOverlap, conflict)
	}

	s.removeFromIndex(appt)
	appt.Date = date
	appt.StartTime = start
	appt.UpdatedAt = s.now()
	s.addToIndex(appt)

	return appt.Clone(), nil
}

// LockScope в памяти ничего не делает: взаимное исключение обеспечивает keylock
func (s *AppointmentStore) LockScope(_ context.Context, _ string) error {
	return nil
}

func (s *AppointmentStore) findOverlap(tenantID, employeeID string, date time.Time, want domain.Interval, excludeID string) string {
	for id := range s.index[domain.ScopeKey(tenantID, employeeID, date)] {
		if id == excludeID {
			continue
		}
		other := s.byID[id]
		if other.IsActive() && other.Occupied().Overlaps(want) {
			return id
		}
	}
	return ""
}

func (s *AppointmentStore) addToIndex(appt *domain.Appointment) {
	key := domain.ScopeKey(appt.TenantID, appt.EmployeeID, appt.Date)
	ids, ok := s.index[key]
	if !ok {
		ids = make(map[string]struct{})
		s.index[key] = ids
	}
	ids[appt.ID] = struct{}{}
}

func (s *AppointmentStore) removeFromIndex(appt *domain.Appointment) {
	key := domain.ScopeKey(appt.TenantID, appt.EmployeeID, appt.Date)
	delete(s.index[key], appt.ID)
	if len(s.index[key]) == 0 {
		delete(s.index, key)
	}
}

func sortAppointments(list []*domain.Appointment) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		if list[i].StartTime != list[j].StartTime {
			return list[i].StartTime.IsBefore(list[j].StartTime)
		}
		return list[i].ID < list[j].ID
	})
}
