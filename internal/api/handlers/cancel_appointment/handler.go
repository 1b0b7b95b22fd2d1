package cancel_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-SalonScheduling/internal/api/middleware"
	"github.com/m04kA/SMC-SalonScheduling/internal/service/appointments"
)

const (
	msgMissingTenantID  = "отсутствует ID салона"
	msgNotFound         = "запись не найдена"
	msgCannotCancel     = "запись не может быть отменена"
	msgChangeNotAllowed = "отмена записи уже невозможна"
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

// Handle DELETE /api/v1/appointments/{id}
// Повторная отмена возвращает уже отмененную запись
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /appointments/{id} - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenantID)
		return
	}

	id := mux.Vars(r)["id"]

	appointment, err := h.service.Cancel(r.Context(), tenantID, id)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("DELETE /appointments/{id} - Appointment not found: id=%s", id)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrInvalidTransition):
			h.logger.Warn("DELETE /appointments/{id} - Cannot cancel: id=%s, error=%v", id, err)
			handlers.RespondConflict(w, msgCannotCancel)

		case errors.Is(err, appointments.ErrChangeNotAllowed):
			h.logger.Warn("DELETE /appointments/{id} - Change not allowed: id=%s", id)
			handlers.RespondConflict(w, msgChangeNotAllowed)

		default:
			h.logger.Error("DELETE /appointments/{id} - Failed to cancel appointment: id=%s, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /appointments/{id} - Appointment cancelled successfully: id=%s, tenant=%s", id, tenantID)
	handlers.RespondJSON(w, http.StatusOK, appointment)
}
