package create_appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SalonScheduling/internal/integrations/events"
	"github.com/m04kA/SMC-SalonScheduling/internal/testutil"
	"github.com/m04kA/SMC-SalonScheduling/pkg/keylock"
	"github.com/m04kA/SMC-SalonScheduling/pkg/logger"
	"github.com/m04kA/SMC-SalonScheduling/pkg/ptr"
	"github.com/m04kA/SMC-SalonScheduling/pkg/txmanager"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

type fixture struct {
	appointments *memory.AppointmentStore
	blocked      *memory.BlockedStore
	locker       *keylock.Locker
	publisher    *testutil.Publisher
	clock        *testutil.Clock
	uc           *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		appointments: memory.NewAppointmentStore(),
		blocked:      memory.NewBlockedStore(),
		locker:       keylock.New(),
		publisher:    &testutil.Publisher{},
		clock:        testutil.NewClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.uc = NewUseCase(
		f.appointments,
		f.blocked,
		testutil.Catalog(),
		testutil.MorningPolicies(),
		f.locker,
		txmanager.NewNop(),
		f.publisher,
		50*time.Millisecond,
		logger.NewNop(),
	).WithTimeProvider(f.clock)
	return f
}

func request(start string) *Request {
	return &Request{
		TenantID:    testutil.Tenant,
		EmployeeID:  testutil.Anna,
		ServiceID:   testutil.Haircut,
		Date:        testutil.Monday,
		StartTime:   types.TimeString(start),
		ClientName:  "Olga Petrova",
		ClientEmail: "olga@example.com",
		ClientPhone: ptr.Ptr("+7 900 000-00-00"),
	}
}

func TestExecute_CreatesPendingWithSnapshot(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), request("10:00"))

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, "Haircut", resp.ServiceName)
	assert.Equal(t, 1500.0, resp.ServicePrice)
	assert.Equal(t, testutil.Monday, resp.Date)

	stored, err := f.appointments.GetByID(context.Background(), testutil.Tenant, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("10:00"), stored.StartTime)

	assert.Equal(t, []events.Type{events.TypeAppointmentCreated}, f.publisher.Types())
	assert.Equal(t, resp.ID, f.publisher.Events()[0].Appointment.ID)
}

func TestExecute_RejectsUnavailableIntervals(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		prepare func(t *testing.T, f *fixture)
		start   string
	}{
		{
			name: "same start",
			prepare: func(t *testing.T, f *fixture) {
				_, err := f.uc.Execute(ctx, request("10:00"))
				require.NoError(t, err)
			},
			start: "10:00",
		},
		{
			name: "partial overlap",
			prepare: func(t *testing.T, f *fixture) {
				_, err := f.uc.Execute(ctx, request("10:00"))
				require.NoError(t, err)
			},
			start: "09:30",
		},
		{
			name: "blocked interval",
			prepare: func(t *testing.T, f *fixture) {
				_, err := f.blocked.Create(ctx, &domain.BlockedInterval{
					TenantID:   testutil.Tenant,
					EmployeeID: testutil.Anna,
					Date:       testutil.Monday,
					StartTime:  ptr.Ptr(types.MustTimeString("10:30")),
					EndTime:    ptr.Ptr(types.MustTimeString("10:45")),
				})
				require.NoError(t, err)
			},
			start: "10:00",
		},
		{
			name: "whole day block",
			prepare: func(t *testing.T, f *fixture) {
				_, err := f.blocked.Create(ctx, &domain.BlockedInterval{
					TenantID:   testutil.Tenant,
					EmployeeID: testutil.Anna,
					Date:       testutil.Monday,
					WholeDay:   true,
				})
				require.NoError(t, err)
			},
			start: "09:00",
		},
		{
			name:    "runs past closing",
			prepare: func(t *testing.T, f *fixture) {},
			start:   "11:30",
		},
		{
			name:    "before opening",
			prepare: func(t *testing.T, f *fixture) {},
			start:   "08:30",
		},
		{
			name: "already started today",
			prepare: func(t *testing.T, f *fixture) {
				f.clock.Set(testutil.Monday.Add(10*time.Hour + 15*time.Minute))
			},
			start: "10:00",
		},
		{
			name: "past date",
			prepare: func(t *testing.T, f *fixture) {
				f.clock.Set(testutil.Monday.AddDate(0, 0, 1))
			},
			start: "10:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.prepare(t, f)
			before, err := f.appointments.List(ctx, domain.AppointmentFilter{TenantID: testutil.Tenant})
			require.NoError(t, err)

			_, err = f.uc.Execute(ctx, request(tt.start))

			assert.ErrorIs(t, err, ErrSlotUnavailable)
			assert.ErrorIs(t, err, domain.ErrSlotUnavailable)

			after, err := f.appointments.List(ctx, domain.AppointmentFilter{TenantID: testutil.Tenant})
			require.NoError(t, err)
			assert.Len(t, after, len(before))
		})
	}
}

func TestExecute_BackToBackAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, request("09:00"))
	require.NoError(t, err)
	_, err = f.uc.Execute(ctx, request("10:00"))
	require.NoError(t, err)
	_, err = f.uc.Execute(ctx, request("11:00"))
	require.NoError(t, err)
}

func TestExecute_OffGridStartAccepted(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), request("09:15"))

	require.NoError(t, err)
	assert.Equal(t, types.TimeString("09:15"), resp.StartTime)
}

func TestExecute_CancelledAppointmentFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, request("10:00"))
	require.NoError(t, err)
	_, err = f.appointments.UpdateStatus(ctx, testutil.Tenant, first.ID, domain.StatusPending, domain.StatusCancelled)
	require.NoError(t, err)

	second, err := f.uc.Execute(ctx, request("10:00"))

	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
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
			name:    "malformed time",
			mutate:  func(r *Request) { r.StartTime = "25:00" },
			wantErr: ErrInvalidInput,
			domErr:  domain.ErrInvalidInput,
		},
		{
			name:    "missing client name",
			mutate:  func(r *Request) { r.ClientName = "  " },
			wantErr: ErrInvalidInput,
			domErr:  domain.ErrInvalidInput,
		},
		{
			name:    "bad email",
			mutate:  func(r *Request) { r.ClientEmail = "not-an-email" },
			wantErr: ErrInvalidInput,
			domErr:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := request("10:00")
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.domErr)
			assert.Empty(t, f.publisher.Events())
		})
	}
}

func TestExecute_PublishFailureKeepsAppointment(t *testing.T) {
	f := newFixture(t)
	f.publisher.Err = errors.New("broker down")

	resp, err := f.uc.Execute(context.Background(), request("10:00"))

	require.NoError(t, err)
	_, err = f.appointments.GetByID(context.Background(), testutil.Tenant, resp.ID)
	assert.NoError(t, err)
}

func TestExecute_LockTimeoutIsBusy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unlock, err := f.locker.Lock(ctx, domain.ScopeKey(testutil.Tenant, testutil.Anna, testutil.Monday))
	require.NoError(t, err)
	defer unlock()

	_, err = f.uc.Execute(ctx, request("10:00"))

	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, err, domain.ErrBusy)

	list, err := f.appointments.List(ctx, domain.AppointmentFilter{TenantID: testutil.Tenant})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExecute_OtherScopeNotBlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unlock, err := f.locker.Lock(ctx, domain.ScopeKey(testutil.Tenant, testutil.Anna, testutil.Monday))
	require.NoError(t, err)
	defer unlock()

	req := request("10:00")
	req.EmployeeID = testutil.Boris

	_, err = f.uc.Execute(ctx, req)
	assert.NoError(t, err)
}

func TestExecute_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)
	f.uc.lockTimeout = 0

	const workers = 2
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.uc.Execute(context.Background(), request("10:00"))
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotUnavailable):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
}

func TestExecute_ConcurrentOverlappingStaysDisjoint(t *testing.T) {
	f := newFixture(t)
	f.uc.lockTimeout = 0
	ctx := context.Background()

	starts := []string{"09:00", "09:15", "09:30", "09:45", "10:00", "10:15", "10:30", "10:45", "11:00"}
	var wg sync.WaitGroup
	for _, s := range starts {
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(s string) {
				defer wg.Done()
				_, _ = f.uc.Execute(ctx, request(s))
			}(s)
		}
	}
	wg.Wait()

	list, err := f.appointments.List(ctx, domain.AppointmentFilter{TenantID: testutil.Tenant})
	require.NoError(t, err)
	require.NotEmpty(t, list)
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			assert.False(t, list[i].Occupied().Overlaps(list[j].Occupied()),
				"%s overlaps %s", list[i].Occupied(), list[j].Occupied())
		}
	}
}
