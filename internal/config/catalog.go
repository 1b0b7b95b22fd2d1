package config

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
)

// CatalogConfig начальное наполнение каталога услуг и сотрудников.
// Каталог принадлежит внешней системе, здесь только данные для запуска.
type CatalogConfig struct {
	Services  []ServiceSeed  `toml:"services"`
	Employees []EmployeeSeed `toml:"employees"`
}

type ServiceSeed struct {
	TenantID        string  `toml:"tenant_id"`
	ID              string  `toml:"id"`
	Name            string  `toml:"name"`
	DurationMinutes int     `toml:"duration_minutes"`
	Price           float64 `toml:"price"`
	Inactive        bool    `toml:"inactive"`
}

type EmployeeSeed struct {
	TenantID   string   `toml:"tenant_id"`
	ID         string   `toml:"id"`
	Name       string   `toml:"name"`
	Email      *string  `toml:"email"`
	Inactive   bool     `toml:"inactive"`
	ServiceIDs []string `toml:"service_ids"`
}

func (s ServiceSeed) ToDomain() *domain.Service {
	return &domain.Service{
		ID:              s.ID,
		TenantID:        s.TenantID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		Price:           s.Price,
		IsActive:        !s.Inactive,
	}
}

func (e EmployeeSeed) ToDomain() *domain.Employee {
	ids := make([]string, len(e.ServiceIDs))
	copy(ids, e.ServiceIDs)
	return &domain.Employee{
		ID:         e.ID,
		TenantID:   e.TenantID,
		Name:       e.Name,
		Email:      e.Email,
		IsActive:   !e.Inactive,
		ServiceIDs: ids,
	}
}

// Validate проверяет уникальность ID и ссылки сотрудников на услуги
func (c CatalogConfig) Validate() error {
	services := make(map[string]bool, len(c.Services))
	for _, s := range c.Services {
		if strings.TrimSpace(s.TenantID) == "" || strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("%w: catalog service requires tenant_id and id", ErrInvalidConfig)
		}
		if s.DurationMinutes <= 0 || s.DurationMinutes > domain.MaxServiceDurationMinutes {
			return fmt.Errorf("%w: catalog service %s: duration_minutes must be within (0, %d]",
				ErrInvalidConfig, s.ID, domain.MaxServiceDurationMinutes)
		}
		if s.Price < 0 {
			return fmt.Errorf("%w: catalog service %s: price must not be negative", ErrInvalidConfig, s.ID)
		}
		key := s.TenantID + "|" + s.ID
		if services[key] {
			return fmt.Errorf("%w: duplicate catalog service %s for tenant %s", ErrInvalidConfig, s.ID, s.TenantID)
		}
		services[key] = true
	}

	employees := make(map[string]bool, len(c.Employees))
	for _, e := range c.Employees {
		if strings.TrimSpace(e.TenantID) == "" || strings.TrimSpace(e.ID) == "" {
			return fmt.Errorf("%w: catalog employee requires tenant_id and id", ErrInvalidConfig)
		}
		key := e.TenantID + "|" + e.ID
		if employees[key] {
			return fmt.Errorf("%w: duplicate catalog employee %s for tenant %s", ErrInvalidConfig, e.ID, e.TenantID)
		}
		employees[key] = true

		for _, serviceID := range e.ServiceIDs {
			if !services[e.TenantID+"|"+serviceID] {
				return fmt.Errorf("%w: employee %s references unknown service %s", ErrInvalidConfig, e.ID, serviceID)
			}
		}
	}

	return nil
}
