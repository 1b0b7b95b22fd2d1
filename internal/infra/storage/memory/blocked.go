package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
)

// BlockedStore блокировки времени сотрудников
type BlockedStore struct {
	mu    sync.RWMutex
	byID  map[string]*domain.BlockedInterval
	index map[string]map[string]struct{}
	now   func() time.Time
}

// NewBlockedStore создает пустое хранилище блокировок
func NewBlockedStore() *BlockedStore {
	return &BlockedStore{
		byID:  make(map[string]*domain.BlockedInterval),
		index: make(map[string]map[string]struct{}),
		now:   time.Now,
	}
}

// Create сохраняет блокировку. Блокировки могут пересекаться между собой.
func (s *BlockedStore) Create(_ context.Context, block *domain.BlockedInterval) (*domain.BlockedInterval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	block.Date = domain.DateOnly(block.Date)
	now := s.now()
	block.CreatedAt = now
	block.UpdatedAt = now

	stored := block.Clone()
	s.byID[stored.ID] = stored
	s.addToIndex(stored)

	return stored.Clone(), nil
}

// GetByID возвращает блокировку арендатора
func (s *BlockedStore) GetByID(_ context.Context, tenantID, id string) (*domain.BlockedInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block, ok := s.byID[id]
	if !ok || block.TenantID != tenantID {
		return nil, storage.ErrBlockedTimeNotFound
	}
	return block.Clone(), nil
}

// Update заменяет дату, интервал и причину блокировки
func (s *BlockedStore) Update(_ context.Context, block *domain.BlockedInterval) (*domain.BlockedInterval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[block.ID]
	if !ok || current.TenantID != block.TenantID {
		return nil, storage.ErrBlockedTimeNotFound
	}

	s.removeFromIndex(current)
	updated := block.Clone()
	updated.Date = domain.DateOnly(updated.Date)
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.now()
	s.byID[updated.ID] = updated
	s.addToIndex(updated)

	return updated.Clone(), nil
}

// Delete удаляет блокировку
func (s *BlockedStore) Delete(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	block, ok := s.byID[id]
	if !ok || block.TenantID != tenantID {
		return storage.ErrBlockedTimeNotFound
	}
	s.removeFromIndex(block)
	delete(s.byID, id)
	return nil
}

// ListByEmployeeDate блокировки сотрудника на дату
func (s *BlockedStore) ListByEmployeeDate(_ context.Context, tenantID, employeeID string, date time.Time) ([]*domain.BlockedInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.BlockedInterval, 0)
	for id := range s.index[domain.ScopeKey(tenantID, employeeID, domain.DateOnly(date))] {
		result = append(result, s.byID[id].Clone())
	}
	sortBlocks(result)
	return result, nil
}

// List блокировки арендатора по фильтру
func (s *BlockedStore) List(_ context.Context, filter domain.BlockedFilter) ([]*domain.BlockedInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.BlockedInterval, 0)
	for _, block := range s.byID {
		if filter.Matches(block) {
			result = append(result, block.Clone())
		}
	}
	sortBlocks(result)
	return result, nil
}

// LockScope в памяти ничего не делает: взаимное исключение обеспечивает keylock
func (s *BlockedStore) LockScope(_ context.Context, _ string) error {
	return nil
}

func (s *BlockedStore) addToIndex(block *domain.BlockedInterval) {
	key := domain.ScopeKey(block.TenantID, block.EmployeeID, block.Date)
	ids, ok := s.index[key]
	if !ok {
		ids = make(map[string]struct{})
		s.index[key] = ids
	}
	ids[block.ID] = struct{}{}
}

func (s *BlockedStore) removeFromIndex(block *domain.BlockedInterval) {
	key := domain.ScopeKey(block.TenantID, block.EmployeeID, block.Date)
	delete(s.index[key], block.ID)
	if len(s.index[key]) == 0 {
		delete(s.index, key)
	}
}

// весь день идет первым, затем по времени начала
func sortBlocks(list []*domain.BlockedInterval) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Interval().Start != b.Interval().Start {
			return a.Interval().Start < b.Interval().Start
		}
		return a.ID < b.ID
	})
}
