package list_appointments

import (
	"net/url"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/service/appointments/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(tenantID string, query url.Values) (*models.ListAppointmentsRequest, error) {
	req := &models.ListAppointmentsRequest{
		TenantID: tenantID,
	}

	if employeeID := query.Get("employeeId"); employeeID != "" {
		req.EmployeeID = &employeeID
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	// Фильтр date задает одновременно начало и конец периода
	if dateStr := query.Get("date"); dateStr != "" {
		date, err := domain.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		req.DateFrom = &date
		req.DateTo = &date
	}

	if dateStr := query.Get("dateFrom"); dateStr != "" {
		date, err := domain.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		req.DateFrom = &date
	}

	if dateStr := query.Get("dateTo"); dateStr != "" {
		date, err := domain.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		req.DateTo = &date
	}

	return req, nil
}
