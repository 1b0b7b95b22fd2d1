package memory

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
)

type catalogKey struct {
	tenantID string
	id       string
}

// Catalog услуги и сотрудники арендаторов. Наполняется из конфигурации.
type Catalog struct {
	mu        sync.RWMutex
	services  map[catalogKey]*domain.Service
	employees map[catalogKey]*domain.Employee
}

// NewCatalog создает пустой каталог
func NewCatalog() *Catalog {
	return &Catalog{
		services:  make(map[catalogKey]*domain.Service),
		employees: make(map[catalogKey]*domain.Employee),
	}
}

// UpsertService добавляет или заменяет услугу
func (c *Catalog) UpsertService(_ context.Context, svc *domain.Service) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := *svc
	c.services[catalogKey{svc.TenantID, svc.ID}] = &copied
	return nil
}

// UpsertEmployee добавляет или заменяет сотрудника вместе со списком услуг
func (c *Catalog) UpsertEmployee(_ context.Context, emp *domain.Employee) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := *emp
	copied.ServiceIDs = append([]string(nil), emp.ServiceIDs...)
	c.employees[catalogKey{emp.TenantID, emp.ID}] = &copied
	return nil
}

// GetService возвращает услугу арендатора
func (c *Catalog) GetService(_ context.Context, tenantID, id string) (*domain.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	svc, ok := c.services[catalogKey{tenantID, id}]
	if !ok {
		return nil, storage.ErrServiceNotFound
	}
	copied := *svc
	return &copied, nil
}

// GetEmployee возвращает сотрудника арендатора
func (c *Catalog) GetEmployee(_ context.Context, tenantID, id string) (*domain.Employee, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	emp, ok := c.employees[catalogKey{tenantID, id}]
	if !ok {
		return nil, storage.ErrEmployeeNotFound
	}
	copied := *emp
	copied.ServiceIDs = append([]string(nil), emp.ServiceIDs...)
	return &copied, nil
}
