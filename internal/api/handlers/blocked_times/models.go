package blocked_times

import (
	"net/url"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/service/blocked/models"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// BlockedTimeRequest HTTP request model.
// Без startTime и endTime блокируется весь день.
type BlockedTimeRequest struct {
	EmployeeID string  `json:"employeeId"`
	Date       string  `json:"date"` // "2026-05-04"
	WholeDay   bool    `json:"wholeDay"`
	StartTime  *string `json:"startTime,omitempty"` // "13:00"
	EndTime    *string `json:"endTime,omitempty"`   // "14:00", не включается
	Reason     *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *BlockedTimeRequest) ToServiceRequest() (*models.BlockedTimeRequest, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	req := &models.BlockedTimeRequest{
		EmployeeID: r.EmployeeID,
		Date:       date,
		WholeDay:   r.WholeDay,
		Reason:     r.Reason,
	}

	if r.StartTime != nil {
		start, err := types.NewTimeStringFromString(*r.StartTime)
		if err != nil {
			return nil, err
		}
		req.StartTime = &start
	}

	if r.EndTime != nil {
		end, err := types.NewTimeStringFromString(*r.EndTime)
		if err != nil {
			return nil, err
		}
		req.EndTime = &end
	}

	return req, nil
}

// ToListRequest формирует фильтр списка из query параметров
func ToListRequest(tenantID string, query url.Values) (*models.ListBlockedTimesRequest, error) {
	req := &models.ListBlockedTimesRequest{
		TenantID: tenantID,
	}

	if employeeID := query.Get("employeeId"); employeeID != "" {
		req.EmployeeID = &employeeID
	}

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

// isSingleDay true, если запрошен один сотрудник на одну дату
func isSingleDay(req *models.ListBlockedTimesRequest) bool {
	return req.EmployeeID != nil && req.DateFrom != nil && req.DateTo != nil && req.DateFrom.Equal(*req.DateTo)
}
