package update_appointment_status

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-SalonScheduling/internal/api/middleware"
	"github.com/m04kA/SMC-SalonScheduling/internal/service/appointments"
	"github.com/m04kA/SMC-SalonScheduling/internal/service/appointments/models"
)

const (
	msgMissingTenantID    = "отсутствует ID салона"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStatus      = "некорректный статус записи"
	msgNotFound           = "запись не найдена"
	msgInvalidTransition  = "недопустимая смена статуса"
	msgChangeNotAllowed   = "изменение записи уже невозможно"
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

// Handle PUT /api/v1/appointments/{id}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("PUT /appointments/{id}/status - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenantID)
		return
	}

	id := mux.Vars(r)["id"]

	var req models.UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /appointments/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	appointment, err := h.service.UpdateStatus(r.Context(), tenantID, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PUT /appointments/{id}/status - Appointment not found: id=%s", id)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("PUT /appointments/{id}/status - Invalid status: id=%s, status=%q", id, req.Status)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, appointments.ErrInvalidTransition):
			h.logger.Warn("PUT /appointments/{id}/status - Invalid transition: id=%s, error=%v", id, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, appointments.ErrChangeNotAllowed):
			h.logger.Warn("PUT /appointments/{id}/status - Change not allowed: id=%s", id)
			handlers.RespondConflict(w, msgChangeNotAllowed)

		default:
			h.logger.Error("PUT /appointments/{id}/status - Failed to update status: id=%s, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /appointments/{id}/status - Status updated successfully: id=%s, status=%s", id, appointment.Status)
	handlers.RespondJSON(w, http.StatusOK, appointment)
}
