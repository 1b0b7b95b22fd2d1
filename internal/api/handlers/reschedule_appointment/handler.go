package reschedule_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-SalonScheduling/internal/api/middleware"
	rescheduleAppointment "github.com/m04kA/SMC-SalonScheduling/internal/usecase/reschedule_appointment"
)

const (
	msgMissingTenantID    = "отсутствует ID салона"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateTime    = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgInvalidRequest     = "некорректные данные переноса"
	msgNotFound           = "запись не найдена"
	msgCannotReschedule   = "запись в текущем статусе нельзя перенести"
	msgChangeNotAllowed   = "перенос записи уже невозможен"
	msgSlotUnavailable    = "выбранное время недоступно"
	msgBusy               = "расписание сотрудника занято, повторите попытку"
)

type Handler struct {
	useCase RescheduleAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PUT /api/v1/appointments/{id}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("PUT /appointments/{id}/reschedule - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenantID)
		return
	}

	id := mux.Vars(r)["id"]

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(tenantID, id)
	if err != nil {
		h.logger.Warn("PUT /appointments/{id}/reschedule - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PUT /appointments/{id}/reschedule - Appointment not found: id=%s", id)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleAppointment.ErrInvalidTransition):
			h.logger.Warn("PUT /appointments/{id}/reschedule - Invalid status: id=%s, error=%v", id, err)
			handlers.RespondConflict(w, msgCannotReschedule)

		case errors.Is(err, rescheduleAppointment.ErrChangeNotAllowed):
			h.logger.Warn("PUT /appointments/{id}/reschedule - Change not allowed: id=%s", id)
			handlers.RespondConflict(w, msgChangeNotAllowed)

		case errors.Is(err, rescheduleAppointment.ErrSlotUnavailable):
			h.logger.Warn("PUT /appointments/{id}/reschedule - Slot unavailable: id=%s, date=%s, start=%s",
				id, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, rescheduleAppointment.ErrInvalidInput):
			h.logger.Warn("PUT /appointments/{id}/reschedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		case errors.Is(err, rescheduleAppointment.ErrBusy):
			h.logger.Warn("PUT /appointments/{id}/reschedule - Scope busy: id=%s", id)
			handlers.RespondServiceUnavailable(w, msgBusy)

		default:
			h.logger.Error("PUT /appointments/{id}/reschedule - Failed to reschedule: id=%s, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /appointments/{id}/reschedule - Appointment rescheduled successfully: id=%s, date=%s, start=%s",
		id, req.Date, req.StartTime)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
