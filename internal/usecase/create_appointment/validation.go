package create_appointment

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.TenantID) == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.EmployeeID) == "" {
		return fmt.Errorf("%w: employeeID is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.ServiceID) == "" {
		return fmt.Errorf("%w: serviceID is required", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Проверяем, что время начала указано
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	// Валидируем формат времени
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return fmt.Errorf("%w: clientName is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > domain.MaxClientNameLength {
		return fmt.Errorf("%w: clientName is longer than %d characters", ErrInvalidInput, domain.MaxClientNameLength)
	}

	if _, err := mail.ParseAddress(req.ClientEmail); err != nil {
		return fmt.Errorf("%w: invalid clientEmail: %v", ErrInvalidInput, err)
	}

	if req.ClientPhone != nil && strings.TrimSpace(*req.ClientPhone) == "" {
		return fmt.Errorf("%w: clientPhone must not be blank", ErrInvalidInput)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes are longer than %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}
