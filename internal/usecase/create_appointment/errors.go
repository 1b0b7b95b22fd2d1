package create_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
)

var (
	// ErrEmployeeNotFound возвращается, когда сотрудник не найден
	ErrEmployeeNotFound = fmt.Errorf("create_appointment: employee %w", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("create_appointment: service %w", domain.ErrNotFound)

	// ErrNotEligible возвращается, когда сотрудник неактивен или не оказывает услугу
	ErrNotEligible = fmt.Errorf("create_appointment: %w", domain.ErrEligibility)

	// ErrSlotUnavailable возвращается, когда интервал занят, заблокирован,
	// вне рабочего времени или уже в прошлом
	ErrSlotUnavailable = fmt.Errorf("create_appointment: %w", domain.ErrSlotUnavailable)

	// ErrBusy возвращается, когда не удалось дождаться блокировки области
	ErrBusy = fmt.Errorf("create_appointment: %w", domain.ErrBusy)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("create_appointment: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
