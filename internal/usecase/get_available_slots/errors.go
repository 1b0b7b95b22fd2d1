package get_available_slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
)

var (
	// ErrEmployeeNotFound возвращается, когда сотрудник не найден
	ErrEmployeeNotFound = fmt.Errorf("get_available_slots: employee %w", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("get_available_slots: service %w", domain.ErrNotFound)

	// ErrNotEligible возвращается, когда сотрудник неактивен или не оказывает услугу
	ErrNotEligible = fmt.Errorf("get_available_slots: %w", domain.ErrEligibility)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("get_available_slots: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
