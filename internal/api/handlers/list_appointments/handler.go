package list_appointments

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-SalonScheduling/internal/api/middleware"
	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
)

const (
	msgMissingTenantID = "отсутствует ID салона"
	msgInvalidParams   = "некорректные параметры запроса"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments
// Query params: employeeId, date, dateFrom, dateTo, status (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /appointments - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenantID)
		return
	}

	serviceReq, err := ToServiceRequest(tenantID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /appointments - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.List(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.logger.Warn("GET /appointments - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /appointments - Failed to list appointments: tenant=%s, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointments - Appointments retrieved successfully: tenant=%s, count=%d",
		tenantID, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, result)
}
