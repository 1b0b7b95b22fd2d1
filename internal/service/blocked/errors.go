package blocked

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
)

var (
	// ErrBlockedTimeNotFound возвращается, когда блокировка не найдена
	ErrBlockedTimeNotFound = fmt.Errorf("blocked time %w", domain.ErrNotFound)

	// ErrEmployeeNotFound возвращается, когда сотрудник не найден или неактивен
	ErrEmployeeNotFound = fmt.Errorf("employee %w", domain.ErrNotFound)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("blocked: %w", domain.ErrInvalidInput)

	// ErrBusy возвращается, когда не удалось дождаться блокировки области
	ErrBusy = fmt.Errorf("blocked: %w", domain.ErrBusy)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
