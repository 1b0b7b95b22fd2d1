package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

var testDate = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

func newAppointment(start string, duration int) *domain.Appointment {
	return &domain.Appointment{
		TenantID:        "salon-1",
		ServiceID:       "haircut",
		EmployeeID:      "anna",
		Date:            testDate,
		StartTime:       types.MustTimeString(start),
		DurationMinutes: duration,
		Status:          domain.StatusPending,
		ClientName:      "Client",
		ClientEmail:     "client@example.com",
	}
}

func TestAppointmentStore_CreateRejectsOverlap(t *testing.T) {
	store := NewAppointmentStore()
	ctx := context.Background()

	first, err := store.Create(ctx, newAppointment("10:00", 60))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = store.Create(ctx, newAppointment("10:30", 60))
	assert.ErrorIs(t, err, storage.ErrOverlap)

	// касание границ не является пересечением
	_, err = store.Create(ctx, newAppointment("11:00", 30))
	assert.NoError(t, err)

	other := newAppointment("10:00", 60)
	other.EmployeeID = "boris"
	_, err = store.Create(ctx, other)
	assert.NoError(t, err)
}

func TestAppointmentStore_CancelledFreesInterval(t *testing.T) {
	store := NewAppointmentStore()
	ctx := context.Background()

	first, err := store.Create(ctx, newAppointment("10:00", 60))
	require.NoError(t, err)

	cancelled, err := store.UpdateStatus(ctx, "salon-1", first.ID, domain.StatusPending, domain.StatusCancelled)
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancelledAt)

	_, err = store.Create(ctx, newAppointment("10:00", 60))
	assert.NoError(t, err)

	active, err := store.ListByEmployeeDate(ctx, "salon-1", "anna", testDate)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestAppointmentStore_UpdateStatusCompareAndSet(t *testing.T) {
	store := NewAppointmentStore()
	ctx := context.Background()

	appt, err := store.Create(ctx, newAppointment("10:00", 60))
	require.NoError(t, err)

	_, err = store.UpdateStatus(ctx, "salon-1", appt.ID, domain.StatusConfirmed, domain.StatusCompleted)
	assert.ErrorIs(t, err, storage.ErrStatusConflict)

	_, err = store.UpdateStatus(ctx, "other", appt.ID, domain.StatusPending, domain.StatusConfirmed)
	assert.ErrorIs(t, err, storage.ErrAppointmentNotFound)

	updated, err := store.UpdateStatus(ctx, "salon-1", appt.ID, domain.StatusPending, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.Equal(t, appt.StartTime, updated.StartTime)
}

func TestAppointmentStore_Reschedule(t *testing.T) {
	store := NewAppointmentStore()
	ctx := context.Background()

	a, err := store.Create(ctx, newAppointment("10:00", 60))
	require.NoError(t, err)
	_, err = store.Create(ctx, newAppointment("12:00", 60))
	require.NoError(t, err)

	// на свое же место
	same, err := store.Reschedule(ctx, "salon-1", a.ID, testDate, types.MustTimeString("10:00"))
	require.NoError(t, err)
	assert.Equal(t, a.ID, same.ID)

	_, err = store.Reschedule(ctx, "salon-1", a.ID, testDate, types.MustTimeString("11:30"))
	assert.ErrorIs(t, err, storage.ErrOverlap)

	nextDay := testDate.AddDate(0, 0, 1)
	moved, err := store.Reschedule(ctx, "salon-1", a.ID, nextDay, types.MustTimeString("11:30"))
	require.NoError(t, err)
	assert.Equal(t, nextDay, moved.Date)
	assert.Equal(t, domain.StatusPending, moved.Status)

	oldDay, err := store.ListByEmployeeDate(ctx, "salon-1", "anna", testDate)
	require.NoError(t, err)
	assert.Len(t, oldDay, 1)

	newDay, err := store.ListByEmployeeDate(ctx, "salon-1", "anna", nextDay)
	require.NoError(t, err)
	require.Len(t, newDay, 1)
	assert.Equal(t, a.ID, newDay[0].ID)
}

func TestAppointmentStore_RescheduleRequiresReschedulableStatus(t *testing.T) {
	store := NewAppointmentStore()
	ctx := context.Background()

	a, err := store.Create(ctx, newAppointment("10:00", 60))
	require.NoError(t, err)
	_, err = store.UpdateStatus(ctx, "salon-1", a.ID, domain.StatusPending, domain.StatusCancelled)
	require.NoError(t, err)

	_, err = store.Reschedule(ctx, "salon-1", a.ID, testDate, types.MustTimeString("15:00"))
	assert.ErrorIs(t, err, storage.ErrStatusConflict)
}

func TestAppointmentStore_ListFilterAndOrder(t *testing.T) {
	store := NewAppointmentStore()
	ctx := context.Background()

	late := newAppointment("15:00", 30)
	early := newAppointment("09:00", 30)
	tomorrow := newAppointment("08:00", 30)
	tomorrow.Date = testDate.AddDate(0, 0, 1)
	foreign := newAppointment("09:00", 30)
	foreign.TenantID = "salon-2"

	for _, a := range []*domain.Appointment{late, early, tomorrow, foreign} {
		_, err := store.Create(ctx, a)
		require.NoError(t, err)
	}

	all, err := store.List(ctx, domain.AppointmentFilter{TenantID: "salon-1"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, early.ID, all[0].ID)
	assert.Equal(t, late.ID, all[1].ID)
	assert.Equal(t, tomorrow.ID, all[2].ID)

	from := testDate.AddDate(0, 0, 1)
	filtered, err := store.List(ctx, domain.AppointmentFilter{TenantID: "salon-1", DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, tomorrow.ID, filtered[0].ID)
}

func TestAppointmentStore_ConcurrentCreatesStayDisjoint(t *testing.T) {
	store := NewAppointmentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	var created atomic.Int32
	starts := []string{"10:00", "10:15", "10:30", "10:45", "11:00", "11:15"}
	for i := 0; i < 4; i++ {
		for _, start := range starts {
			wg.Add(1)
			go func(start string) {
				defer wg.Done()
				if _, err := store.Create(ctx, newAppointment(start, 30)); err == nil {
					created.Add(1)
				}
			}(start)
		}
	}
	wg.Wait()

	active, err := store.ListByEmployeeDate(ctx, "salon-1", "anna", testDate)
	require.NoError(t, err)
	assert.Equal(t, int(created.Load()), len(active))
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			assert.False(t, active[i].Occupied().Overlaps(active[j].Occupied()),
				"%s overlaps %s", active[i].Occupied(), active[j].Occupied())
		}
	}
}
