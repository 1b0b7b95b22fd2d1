package blocked_times

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-SalonScheduling/internal/api/middleware"
	"github.com/m04kA/SMC-SalonScheduling/internal/service/blocked"
	"github.com/m04kA/SMC-SalonScheduling/internal/service/blocked/models"
)

const (
	msgMissingTenantID    = "отсутствует ID салона"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidParams      = "некорректные параметры запроса"
	msgInvalidBlockedTime = "некорректный интервал блокировки"
	msgNotFound           = "блокировка не найдена"
	msgEmployeeNotFound   = "сотрудник не найден"
	msgBusy               = "расписание сотрудника занято, повторите попытку"
)

type Handler struct {
	service BlockedTimeService
	logger  Logger
}

func NewHandler(service BlockedTimeService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleList GET /api/v1/blocked-times
// Query params: employeeId, date, dateFrom, dateTo (опционально)
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /blocked-times - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenantID)
		return
	}

	listReq, err := ToListRequest(tenantID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /blocked-times - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	var result *models.BlockedTimeListResponse
	if isSingleDay(listReq) {
		result, err = h.service.List(r.Context(), tenantID, *listReq.EmployeeID, *listReq.DateFrom)
	} else {
		result, err = h.service.ListByTenant(r.Context(), listReq)
	}
	if err != nil {
		switch {
		case errors.Is(err, blocked.ErrInvalidInput):
			h.logger.Warn("GET /blocked-times - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /blocked-times - Failed to list blocked times: tenant=%s, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /blocked-times - Blocked times retrieved successfully: tenant=%s, count=%d",
		tenantID, len(result.BlockedTimes))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleAdd POST /api/v1/blocked-times
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /blocked-times - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenantID)
		return
	}

	serviceReq, ok := h.decode(w, r, "POST /blocked-times")
	if !ok {
		return
	}

	result, err := h.service.Add(r.Context(), tenantID, serviceReq)
	if err != nil {
		h.respondError(w, "POST /blocked-times", "", err)
		return
	}

	h.logger.Info("POST /blocked-times - Blocked time created successfully: id=%s, employee_id=%s",
		result.ID, result.EmployeeID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleUpdate PUT /api/v1/blocked-times/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("PUT /blocked-times/{id} - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenantID)
		return
	}

	id := mux.Vars(r)["id"]

	serviceReq, ok := h.decode(w, r, "PUT /blocked-times/{id}")
	if !ok {
		return
	}

	result, err := h.service.Update(r.Context(), tenantID, id, serviceReq)
	if err != nil {
		h.respondError(w, "PUT /blocked-times/{id}", id, err)
		return
	}

	h.logger.Info("PUT /blocked-times/{id} - Blocked time updated successfully: id=%s", id)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleRemove DELETE /api/v1/blocked-times/{id}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /blocked-times/{id} - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenantID)
		return
	}

	id := mux.Vars(r)["id"]

	if err := h.service.Remove(r.Context(), tenantID, id); err != nil {
		h.respondError(w, "DELETE /blocked-times/{id}", id, err)
		return
	}

	h.logger.Info("DELETE /blocked-times/{id} - Blocked time removed successfully: id=%s", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, route string) (*models.BlockedTimeRequest, bool) {
	var req BlockedTimeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return nil, false
	}

	serviceReq, err := req.ToServiceRequest()
	if err != nil {
		h.logger.Warn("%s - Failed to parse request: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidBlockedTime)
		return nil, false
	}

	return serviceReq, true
}

func (h *Handler) respondError(w http.ResponseWriter, route, id string, err error) {
	switch {
	case errors.Is(err, blocked.ErrBlockedTimeNotFound):
		h.logger.Warn("%s - Blocked time not found: id=%s", route, id)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, blocked.ErrEmployeeNotFound):
		h.logger.Warn("%s - Employee not found: %v", route, err)
		handlers.RespondNotFound(w, msgEmployeeNotFound)

	case errors.Is(err, blocked.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidBlockedTime)

	case errors.Is(err, blocked.ErrBusy):
		h.logger.Warn("%s - Scope busy: %v", route, err)
		handlers.RespondServiceUnavailable(w, msgBusy)

	default:
		h.logger.Error("%s - Failed: id=%s, error=%v", route, id, err)
		handlers.RespondInternalError(w)
	}
}
