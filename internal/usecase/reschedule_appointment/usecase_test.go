package reschedule_appointment

import (
	"context"
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
}

func newFixture() *fixture {
	return &fixture{
		appointments: memory.NewAppointmentStore(),
		blocked:      memory.NewBlockedStore(),
		locker:       keylock.New(),
		publisher:    &testutil.Publisher{},
		clock:        testutil.NewClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
	}
}

func (f *fixture) useCase(policy domain.ChangePolicy) *UseCase {
	return NewUseCase(
		f.appointments,
		f.blocked,
		testutil.MorningPolicies(),
		policy,
		f.locker,
		txmanager.NewNop(),
		f.publisher,
		50*time.Millisecond,
		logger.NewNop(),
	).WithTimeProvider(f.clock)
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
		ClientName:      "Olga",
		ClientEmail:     "olga@example.com",
	})
	require.NoError(t, err)
	return appt
}

func move(id string, date time.Time, start string) *Request {
	return &Request{TenantID: testutil.Tenant, ID: id, Date: date, StartTime: types.TimeString(start)}
}

func TestExecute_MovesKeepingIdentityAndStatus(t *testing.T) {
	f := newFixture()
	appt := f.book(t, "09:00", domain.StatusConfirmed)

	resp, err := f.useCase(domain.MinNoticePolicy{}).Execute(context.Background(), move(appt.ID, testutil.Monday, "11:00"))

	require.NoError(t, err)
	assert.Equal(t, appt.ID, resp.Appointment.ID)
	assert.Equal(t, domain.StatusConfirmed, resp.Appointment.Status)
	assert.Equal(t, types.TimeString("11:00"), resp.Appointment.StartTime)
	assert.Equal(t, []events.Type{events.TypeAppointmentRescheduled}, f.publisher.Types())

	// старый интервал освободился
	_, err = f.appointments.Create(context.Background(), &domain.Appointment{
		TenantID:        testutil.Tenant,
		EmployeeID:      testutil.Anna,
		Date:            testutil.Monday,
		StartTime:       "09:00",
		DurationMinutes: 60,
		Status:          domain.StatusPending,
	})
	assert.NoError(t, err)
}

func TestExecute_OwnSlotAndSelfOverlap(t *testing.T) {
	f := newFixture()
	appt := f.book(t, "10:00", domain.StatusPending)
	uc := f.useCase(domain.MinNoticePolicy{})

	_, err := uc.Execute(context.Background(), move(appt.ID, testutil.Monday, "10:00"))
	require.NoError(t, err)

	// пересекается только со своим прежним интервалом
	resp, err := uc.Execute(context.Background(), move(appt.ID, testutil.Monday, "10:30"))
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("10:30"), resp.Appointment.StartTime)
}

func TestExecute_ToAnotherDate(t *testing.T) {
	f := newFixture()
	appt := f.book(t, "10:00", domain.StatusPending)
	tuesday := testutil.Monday.AddDate(0, 0, 1)

	resp, err := f.useCase(domain.MinNoticePolicy{}).Execute(context.Background(), move(appt.ID, tuesday.Add(15*time.Hour), "10:00"))

	require.NoError(t, err)
	assert.Equal(t, tuesday, resp.Appointment.Date)

	monday, err := f.appointments.ListByEmployeeDate(context.Background(), testutil.Tenant, testutil.Anna, testutil.Monday)
	require.NoError(t, err)
	assert.Empty(t, monday)
}

func TestExecute_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, f *fixture)
		start   string
	}{
		{
			name:    "overlaps another appointment",
			prepare: func(t *testing.T, f *fixture) { f.book(t, "11:00", domain.StatusConfirmed) },
			start:   "10:30",
		},
		{
			name: "blocked",
			prepare: func(t *testing.T, f *fixture) {
				_, err := f.blocked.Create(context.Background(), &domain.BlockedInterval{
					TenantID:   testutil.Tenant,
					EmployeeID: testutil.Anna,
					Date:       testutil.Monday,
					StartTime:  ptr.Ptr(types.MustTimeString("11:00")),
					EndTime:    ptr.Ptr(types.MustTimeString("12:00")),
				})
				require.NoError(t, err)
			},
			start: "11:00",
		},
		{
			name:    "outside working hours",
			prepare: func(t *testing.T, f *fixture) {},
			start:   "11:30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			appt := f.book(t, "09:00", domain.StatusPending)
			tt.prepare(t, f)

			_, err := f.useCase(domain.MinNoticePolicy{}).Execute(context.Background(), move(appt.ID, testutil.Monday, tt.start))

			assert.ErrorIs(t, err, ErrSlotUnavailable)
			stored, getErr := f.appointments.GetByID(context.Background(), testutil.Tenant, appt.ID)
			require.NoError(t, getErr)
			assert.Equal(t, types.TimeString("09:00"), stored.StartTime)
			assert.Empty(t, f.publisher.Events())
		})
	}
}

func TestExecute_TerminalStatuses(t *testing.T) {
	for _, status := range []domain.AppointmentStatus{domain.StatusCancelled, domain.StatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			appt := f.book(t, "09:00", domain.StatusConfirmed)
			_, err := f.appointments.UpdateStatus(context.Background(), testutil.Tenant, appt.ID, domain.StatusConfirmed, status)
			require.NoError(t, err)

			_, err = f.useCase(domain.MinNoticePolicy{}).Execute(context.Background(), move(appt.ID, testutil.Monday, "10:00"))

			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		})
	}
}

func TestExecute_NotFound(t *testing.T) {
	f := newFixture()
	appt := f.book(t, "09:00", domain.StatusPending)
	uc := f.useCase(domain.MinNoticePolicy{})

	_, err := uc.Execute(context.Background(), move("missing", testutil.Monday, "10:00"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	req := move(appt.ID, testutil.Monday, "10:00")
	req.TenantID = "salon-2"
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestExecute_ChangePolicy(t *testing.T) {
	f := newFixture()
	appt := f.book(t, "10:00", domain.StatusConfirmed)
	f.clock.Set(testutil.Monday.Add(9 * time.Hour))
	uc := f.useCase(domain.MinNoticePolicy{Minutes: 120})

	_, err := uc.Execute(context.Background(), move(appt.ID, testutil.Monday, "11:00"))

	assert.ErrorIs(t, err, ErrChangeNotAllowed)
	assert.ErrorIs(t, err, domain.ErrChangeNotAllowed)
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture()
	appt := f.book(t, "10:00", domain.StatusConfirmed)

	_, err := f.useCase(domain.MinNoticePolicy{}).Execute(context.Background(), move(appt.ID, testutil.Monday, "10h"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExecute_LockTimeoutIsBusy(t *testing.T) {
	f := newFixture()
	appt := f.book(t, "09:00", domain.StatusPending)

	unlock, err := f.locker.Lock(context.Background(), domain.ScopeKey(testutil.Tenant, testutil.Anna, testutil.Monday))
	require.NoError(t, err)
	defer unlock()

	_, err = f.useCase(domain.MinNoticePolicy{}).Execute(context.Background(), move(appt.ID, testutil.Monday, "10:00"))

	assert.ErrorIs(t, err, ErrBusy)
	stored, err := f.appointments.GetByID(context.Background(), testutil.Tenant, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("09:00"), stored.StartTime)
}
