package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-SalonScheduling/internal/api/middleware"
	getAvailableSlots "github.com/m04kA/SMC-SalonScheduling/internal/usecase/get_available_slots"
)

const (
	msgMissingTenantID  = "отсутствует ID салона"
	msgMissingServiceID = "ID услуги обязателен"
	msgMissingDate      = "дата обязательна"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRequest   = "некорректные параметры запроса"
	msgEmployeeNotFound = "сотрудник не найден"
	msgServiceNotFound  = "услуга не найдена"
	msgNotEligible      = "сотрудник не оказывает эту услугу"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/employees/{employeeId}/availability
// Query params: serviceId (required), date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /employees/{id}/availability - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenantID)
		return
	}

	employeeID := mux.Vars(r)["employeeId"]

	// Извлекаем serviceId и date из query параметров
	serviceID := r.URL.Query().Get("serviceId")
	if serviceID == "" {
		h.logger.Warn("GET /employees/{id}/availability - Missing service ID")
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /employees/{id}/availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(tenantID, employeeID, serviceID, dateStr)
	if err != nil {
		h.logger.Warn("GET /employees/{id}/availability - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrEmployeeNotFound):
			h.logger.Warn("GET /employees/{id}/availability - Employee not found: employee_id=%s", employeeID)
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /employees/{id}/availability - Service not found: service_id=%s", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrNotEligible):
			h.logger.Warn("GET /employees/{id}/availability - Not eligible: employee_id=%s, service_id=%s, error=%v",
				employeeID, serviceID, err)
			handlers.RespondUnprocessable(w, msgNotEligible)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /employees/{id}/availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		default:
			h.logger.Error("GET /employees/{id}/availability - Failed to get slots: employee_id=%s, service_id=%s, error=%v",
				employeeID, serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /employees/{id}/availability - Slots retrieved successfully: tenant=%s, employee_id=%s, service_id=%s, slots_count=%d",
		tenantID, employeeID, serviceID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
