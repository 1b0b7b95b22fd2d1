package get_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-SalonScheduling/internal/api/middleware"
	"github.com/m04kA/SMC-SalonScheduling/internal/service/appointments"
)

const (
	msgMissingTenantID = "отсутствует ID салона"
	msgNotFound        = "запись не найдена"
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

// Handle GET /api/v1/appointments/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /appointments/{id} - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenantID)
		return
	}

	id := mux.Vars(r)["id"]

	appointment, err := h.service.GetByID(r.Context(), tenantID, id)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("GET /appointments/{id} - Appointment not found: id=%s", id)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /appointments/{id} - Failed to get appointment: id=%s, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointments/{id} - Appointment retrieved successfully: id=%s, tenant=%s", id, tenantID)
	handlers.RespondJSON(w, http.StatusOK, appointment)
}
