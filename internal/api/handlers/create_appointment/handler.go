package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-SalonScheduling/internal/api/middleware"
	createAppointment "github.com/m04kA/SMC-SalonScheduling/internal/usecase/create_appointment"
)

const (
	msgMissingTenantID    = "отсутствует ID салона"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты записи, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:MM"
	msgInvalidRequest     = "некорректные данные записи"
	msgSlotUnavailable    = "выбранное время недоступно"
	msgEmployeeNotFound   = "сотрудник не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgNotEligible        = "сотрудник не оказывает эту услугу"
	msgBusy               = "расписание сотрудника занято, повторите попытку"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenantID)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(tenantID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrSlotUnavailable):
			h.logger.Warn("POST /appointments - Slot unavailable: employee_id=%s, date=%s, start=%s",
				req.EmployeeID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, createAppointment.ErrEmployeeNotFound):
			h.logger.Warn("POST /appointments - Employee not found: employee_id=%s", req.EmployeeID)
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: service_id=%s", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrNotEligible):
			h.logger.Warn("POST /appointments - Not eligible: employee_id=%s, service_id=%s, error=%v",
				req.EmployeeID, req.ServiceID, err)
			handlers.RespondUnprocessable(w, msgNotEligible)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		case errors.Is(err, createAppointment.ErrBusy):
			h.logger.Warn("POST /appointments - Scope busy: employee_id=%s, date=%s", req.EmployeeID, req.Date)
			handlers.RespondServiceUnavailable(w, msgBusy)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: employee_id=%s, error=%v",
				req.EmployeeID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /appointments - Appointment created successfully: id=%s, tenant=%s, employee_id=%s",
		result.ID, tenantID, result.EmployeeID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
