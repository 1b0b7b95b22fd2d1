package get_available_slots

import (
	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SalonScheduling/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string   `json:"date"`
	EmployeeID      string   `json:"employeeId"`
	ServiceID       string   `json:"serviceId"`
	DurationMinutes int      `json:"durationMinutes"`
	Slots           []string `json:"slots"` // ["09:00", "09:30"]
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]string, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = slot.String()
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		EmployeeID:      resp.EmployeeID,
		ServiceID:       resp.ServiceID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(tenantID, employeeID, serviceID, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := domain.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		TenantID:   tenantID,
		EmployeeID: employeeID,
		ServiceID:  serviceID,
		Date:       date,
	}, nil
}
