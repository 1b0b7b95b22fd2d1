package appointments

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("appointment %w", domain.ErrNotFound)

	// ErrInvalidTransition возвращается при недопустимой смене статуса
	ErrInvalidTransition = fmt.Errorf("appointments: %w", domain.ErrInvalidTransition)

	// ErrChangeNotAllowed возвращается, когда политика изменений запрещает отмену
	ErrChangeNotAllowed = fmt.Errorf("appointments: %w", domain.ErrChangeNotAllowed)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("appointments: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
