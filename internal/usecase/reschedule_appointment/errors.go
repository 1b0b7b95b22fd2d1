package reschedule_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("reschedule_appointment: appointment %w", domain.ErrNotFound)

	// ErrInvalidTransition возвращается, когда статус записи не допускает перенос
	ErrInvalidTransition = fmt.Errorf("reschedule_appointment: %w", domain.ErrInvalidTransition)

	// ErrChangeNotAllowed возвращается, когда политика изменений запрещает перенос
	ErrChangeNotAllowed = fmt.Errorf("reschedule_appointment: %w", domain.ErrChangeNotAllowed)

	// ErrSlotUnavailable возвращается, когда новый интервал недоступен
	ErrSlotUnavailable = fmt.Errorf("reschedule_appointment: %w", domain.ErrSlotUnavailable)

	// ErrBusy возвращается, когда не удалось дождаться блокировки области
	ErrBusy = fmt.Errorf("reschedule_appointment: %w", domain.ErrBusy)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("reschedule_appointment: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_appointment: internal error")
)
