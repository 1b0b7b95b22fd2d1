package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SalonScheduling/internal/testutil"
	"github.com/m04kA/SMC-SalonScheduling/pkg/logger"
	"github.com/m04kA/SMC-SalonScheduling/pkg/ptr"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

type fixture struct {
	appointments *memory.AppointmentStore
	blocked      *memory.BlockedStore
	clock        *testutil.Clock
	uc           *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		appointments: memory.NewAppointmentStore(),
		blocked:      memory.NewBlockedStore(),
		clock:        testutil.NewClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.uc = NewUseCase(f.appointments, f.blocked, testutil.Catalog(), testutil.MorningPolicies(), logger.NewNop()).
		WithTimeProvider(f.clock)
	return f
}

func (f *fixture) book(t *testing.T, start string, status domain.AppointmentStatus) *domain.Appointment {
	t.Helper()
	appt, err := f.appointments.Create(context.Background(), &domain.Appointment{
		TenantID:        testutil.Tenant,
		EmployeeID:      testutil.Anna,
		ServiceID:       testutil.Haircut,
		Date:            testutil.Monday,
		StartTime:       types.MustTimeString(start),
		DurationMinutes: 60,
		Status:          status,
	})
	require.NoError(t, err)
	return appt
}

func haircutRequest() *Request {
	return &Request{
		TenantID:   testutil.Tenant,
		EmployeeID: testutil.Anna,
		ServiceID:  testutil.Haircut,
		Date:       testutil.Monday,
	}
}

func TestExecute_FreeMorning(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), haircutRequest())

	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"09:00", "09:30", "10:00", "10:30", "11:00"}, resp.Slots)
	assert.Equal(t, 60, resp.DurationMinutes)
}

func TestExecute_ConfirmedAppointmentAndCancellation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt := f.book(t, "10:00", domain.StatusConfirmed)

	resp, err := f.uc.Execute(ctx, haircutRequest())
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"09:00", "11:00"}, resp.Slots)

	_, err = f.appointments.UpdateStatus(ctx, testutil.Tenant, appt.ID, domain.StatusConfirmed, domain.StatusCancelled)
	require.NoError(t, err)

	resp, err = f.uc.Execute(ctx, haircutRequest())
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"09:00", "09:30", "10:00", "10:30", "11:00"}, resp.Slots)
}

func TestExecute_WholeDayBlock(t *testing.T) {
	f := newFixture(t)
	_, err := f.blocked.Create(context.Background(), &domain.BlockedInterval{
		TenantID:   testutil.Tenant,
		EmployeeID: testutil.Anna,
		Date:       testutil.Monday,
		WholeDay:   true,
	})
	require.NoError(t, err)

	for _, serviceID := range []string{testutil.Haircut, testutil.Coloring} {
		req := haircutRequest()
		req.ServiceID = serviceID

		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
		assert.NotNil(t, resp.Slots)
	}
}

func TestExecute_PartialBlock(t *testing.T) {
	f := newFixture(t)
	_, err := f.blocked.Create(context.Background(), &domain.BlockedInterval{
		TenantID:   testutil.Tenant,
		EmployeeID: testutil.Anna,
		Date:       testutil.Monday,
		StartTime:  ptr.Ptr(types.MustTimeString("09:30")),
		EndTime:    ptr.Ptr(types.MustTimeString("10:00")),
	})
	require.NoError(t, err)

	resp, err := f.uc.Execute(context.Background(), haircutRequest())

	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"10:00", "10:30", "11:00"}, resp.Slots)
}

func TestExecute_OtherEmployeeUnaffected(t *testing.T) {
	f := newFixture(t)
	f.book(t, "10:00", domain.StatusPending)

	req := haircutRequest()
	req.EmployeeID = testutil.Boris

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Len(t, resp.Slots, 5)
}

func TestExecute_PastAndToday(t *testing.T) {
	f := newFixture(t)

	// вчера - пустой список без ошибки
	f.clock.Set(testutil.Monday.AddDate(0, 0, 1).Add(8 * time.Hour))
	resp, err := f.uc.Execute(context.Background(), haircutRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)

	// сегодня в 10:00 ровно - 10:00 уже прошло
	f.clock.Set(testutil.Monday.Add(10 * time.Hour))
	resp, err = f.uc.Execute(context.Background(), haircutRequest())
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"10:30", "11:00"}, resp.Slots)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
		domErr  error
	}{
		{
			name:    "unknown employee",
			mutate:  func(r *Request) { r.EmployeeID = "ghost" },
			wantErr: ErrEmployeeNotFound,
			domErr:  domain.ErrNotFound,
		},
		{
			name:    "unknown service",
			mutate:  func(r *Request) { r.ServiceID = "massage" },
			wantErr: ErrServiceNotFound,
			domErr:  domain.ErrNotFound,
		},
		{
			name:    "service not offered",
			mutate:  func(r *Request) { r.EmployeeID = testutil.Boris; r.ServiceID = testutil.Coloring },
			wantErr: ErrNotEligible,
			domErr:  domain.ErrEligibility,
		},
		{
			name:    "inactive employee",
			mutate:  func(r *Request) { r.EmployeeID = testutil.Retired },
			wantErr: ErrNotEligible,
			domErr:  domain.ErrEligibility,
		},
		{
			name:    "inactive service",
			mutate:  func(r *Request) { r.ServiceID = testutil.Discontinued },
			wantErr: ErrNotEligible,
			domErr:  domain.ErrEligibility,
		},
		{
			name:    "missing date",
			mutate:  func(r *Request) { r.Date = time.Time{} },
			wantErr: ErrInvalidInput,
			domErr:  domain.ErrInvalidInput,
		},
		{
			name:    "other tenant",
			mutate:  func(r *Request) { r.TenantID = "salon-2" },
			wantErr: ErrEmployeeNotFound,
			domErr:  domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := haircutRequest()
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.domErr)
		})
	}
}
