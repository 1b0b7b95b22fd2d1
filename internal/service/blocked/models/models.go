package models

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

// Request модели

// BlockedTimeRequest запрос на создание или изменение блокировки.
// Если не заданы ни startTime, ни endTime, блокируется весь день.
type BlockedTimeRequest struct {
	EmployeeID string            `json:"employeeId"`
	Date       time.Time         `json:"-"`
	WholeDay   bool              `json:"wholeDay"`
	StartTime  *types.TimeString `json:"startTime,omitempty"`
	EndTime    *types.TimeString `json:"endTime,omitempty"` // Не включается в блокировку
	Reason     *string           `json:"reason,omitempty"`
}

// ToDomain собирает доменную блокировку
func (r *BlockedTimeRequest) ToDomain(tenantID string) *domain.BlockedInterval {
	return &domain.BlockedInterval{
		TenantID:   tenantID,
		EmployeeID: r.EmployeeID,
		Date:       domain.DateOnly(r.Date),
		WholeDay:   r.WholeDay || (r.StartTime == nil && r.EndTime == nil),
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Reason:     r.Reason,
	}
}

// ListBlockedTimesRequest фильтр списка блокировок салона
type ListBlockedTimesRequest struct {
	TenantID   string
	EmployeeID *string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBlockedTimesRequest) ToDomainFilter() domain.BlockedFilter {
	return domain.BlockedFilter{
		TenantID:   r.TenantID,
		EmployeeID: r.EmployeeID,
		DateFrom:   r.DateFrom,
		DateTo:     r.DateTo,
	}
}

// Response модели

// BlockedTimeResponse ответ с данными блокировки
type BlockedTimeResponse struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Date       string    `json:"date"`
	WholeDay   bool      `json:"wholeDay"`
	StartTime  *string   `json:"startTime,omitempty"`
	EndTime    *string   `json:"endTime,omitempty"`
	Reason     *string   `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BlockedTimeListResponse ответ со списком блокировок
type BlockedTimeListResponse struct {
	BlockedTimes []BlockedTimeResponse `json:"blockedTimes"`
}

// FromDomainBlockedTime конвертирует domain модель в DTO
func FromDomainBlockedTime(b *domain.BlockedInterval) *BlockedTimeResponse {
	if b == nil {
		return nil
	}

	resp := &BlockedTimeResponse{
		ID:         b.ID,
		EmployeeID: b.EmployeeID,
		Date:       b.Date.Format(domain.DateFormat),
		WholeDay:   b.WholeDay,
		Reason:     b.Reason,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
	if b.StartTime != nil {
		s := b.StartTime.String()
		resp.StartTime = &s
	}
	if b.EndTime != nil {
		s := b.EndTime.String()
		resp.EndTime = &s
	}

	return resp
}

// FromDomainBlockedTimeList конвертирует список domain моделей в DTO
func FromDomainBlockedTimeList(list []*domain.BlockedInterval) *BlockedTimeListResponse {
	resp := &BlockedTimeListResponse{
		BlockedTimes: make([]BlockedTimeResponse, 0, len(list)),
	}
	for _, b := range list {
		if item := FromDomainBlockedTime(b); item != nil {
			resp.BlockedTimes = append(resp.BlockedTimes, *item)
		}
	}
	return resp
}
