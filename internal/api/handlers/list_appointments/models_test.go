package list_appointments

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToServiceRequest(t *testing.T) {
	t.Run("all filters", func(t *testing.T) {
		req, err := ToServiceRequest("salon-1", url.Values{
			"employeeId": {"emp-anna"},
			"status":     {"confirmed"},
			"dateFrom":   {"2026-05-01"},
			"dateTo":     {"2026-05-31"},
		})

		require.NoError(t, err)
		assert.Equal(t, "salon-1", req.TenantID)
		require.NotNil(t, req.EmployeeID)
		assert.Equal(t, "emp-anna", *req.EmployeeID)
		require.NotNil(t, req.Status)
		assert.Equal(t, "confirmed", *req.Status)
		assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), *req.DateFrom)
		assert.Equal(t, time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), *req.DateTo)
	})

	t.Run("single date sets both bounds", func(t *testing.T) {
		req, err := ToServiceRequest("salon-1", url.Values{"date": {"2026-05-04"}})

		require.NoError(t, err)
		assert.Equal(t, *req.DateFrom, *req.DateTo)
	})

	t.Run("no filters", func(t *testing.T) {
		req, err := ToServiceRequest("salon-1", url.Values{})

		require.NoError(t, err)
		assert.Nil(t, req.EmployeeID)
		assert.Nil(t, req.DateFrom)
		assert.Nil(t, req.Status)
	})

	t.Run("malformed date", func(t *testing.T) {
		_, err := ToServiceRequest("salon-1", url.Values{"dateTo": {"yesterday"}})

		assert.Error(t, err)
	})
}
