package reschedule_appointment

import (
	"fmt"
	"strings"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.TenantID) == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.ID) == "" {
		return fmt.Errorf("%w: appointment id is required", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	return nil
}
