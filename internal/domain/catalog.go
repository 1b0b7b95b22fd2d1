package domain

import "fmt"

// Service represents a salon service owned by tenant configuration
type Service struct {
	ID              string
	TenantID        string
	Name            string
	DurationMinutes int
	Price           float64
	IsActive        bool
}

// Employee represents a professional who performs services
type Employee struct {
	ID         string
	TenantID   string
	Name       string
	Email      *string
	IsActive   bool
	ServiceIDs []string
}

// OffersService returns true if the employee performs the service
func (e *Employee) OffersService(serviceID string) bool {
	for _, id := range e.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// CheckEligibility verifies the employee may be booked for the service.
// Shared by availability queries and booking so both reject the same pairs.
func CheckEligibility(employee *Employee, service *Service) error {
	if !employee.IsActive {
		return fmt.Errorf("%w: employee %s is inactive", ErrEligibility, employee.ID)
	}
	if !service.IsActive {
		return fmt.Errorf("%w: service %s is inactive", ErrEligibility, service.ID)
	}
	if service.DurationMinutes <= 0 {
		return fmt.Errorf("%w: service %s has no duration", ErrEligibility, service.ID)
	}
	if !employee.OffersService(service.ID) {
		return fmt.Errorf("%w: employee %s does not offer service %s", ErrEligibility, employee.ID, service.ID)
	}
	return nil
}
