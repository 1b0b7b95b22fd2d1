package blocked_times

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonScheduling/internal/service/blocked/models"
)

type BlockedTimeService interface {
	Add(ctx context.Context, tenantID string, req *models.BlockedTimeRequest) (*models.BlockedTimeResponse, error)
	Update(ctx context.Context, tenantID, id string, req *models.BlockedTimeRequest) (*models.BlockedTimeResponse, error)
	Remove(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID, employeeID string, date time.Time) (*models.BlockedTimeListResponse, error)
	ListByTenant(ctx context.Context, req *models.ListBlockedTimesRequest) (*models.BlockedTimeListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
