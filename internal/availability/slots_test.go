package availability

import (
	"testing"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
	"github.com/stretchr/testify/assert"
)

func ts(s string) types.TimeString {
	return types.MustTimeString(s)
}

func appointment(id, start string, duration int, status domain.AppointmentStatus) *domain.Appointment {
	return &domain.Appointment{ID: id, StartTime: ts(start), DurationMinutes: duration, Status: status}
}

func block(start, end string) *domain.BlockedInterval {
	s, e := ts(start), ts(end)
	return &domain.BlockedInterval{StartTime: &s, EndTime: &e}
}

var morning = []domain.Interval{{Start: 9 * 60, End: 12 * 60}}

func TestSlots_NoBlocksNoAppointments(t *testing.T) {
	day := NewDay(morning, nil, nil, "")

	got := day.Slots(30, 60, 0)

	// 11:30 не влезает: 11:30+60 = 12:30 > 12:00
	assert.Equal(t, []types.TimeString{"09:00", "09:30", "10:00", "10:30", "11:00"}, got)
}

func TestSlots_ConfirmedAppointmentRemovesOverlappingStarts(t *testing.T) {
	appts := []*domain.Appointment{appointment("a1", "10:00", 60, domain.StatusConfirmed)}
	day := NewDay(morning, nil, appts, "")

	// 09:30+60 = 10:30 пересекает 10:00-11:00
	assert.Equal(t, []types.TimeString{"09:00", "11:00"}, day.Slots(30, 60, 0))
	assert.False(t, day.Accepts(domain.Interval{Start: 570, End: 630}, 0))
}

func TestSlots_CancelledAppointmentFreesInterval(t *testing.T) {
	appts := []*domain.Appointment{appointment("a1", "10:00", 60, domain.StatusCancelled)}
	day := NewDay(morning, nil, appts, "")

	assert.Equal(t, []types.TimeString{"09:00", "09:30", "10:00", "10:30", "11:00"}, day.Slots(30, 60, 0))
}

func TestSlots_WholeDayBlock(t *testing.T) {
	blocks := []*domain.BlockedInterval{{WholeDay: true}}
	day := NewDay(morning, blocks, nil, "")

	assert.Empty(t, day.Slots(30, 60, 0))
	assert.Empty(t, day.Free())
}

func TestSlots_OverlappingBlocksAreAdditive(t *testing.T) {
	blocks := []*domain.BlockedInterval{block("09:00", "10:00"), block("09:30", "10:30")}
	day := NewDay(morning, blocks, nil, "")

	assert.Equal(t, []domain.Interval{{Start: 630, End: 720}}, day.Free())
	assert.Equal(t, []types.TimeString{"10:30", "11:00"}, day.Slots(30, 60, 0))
}

func TestSlots_GridAnchoredAtWorkingStart(t *testing.T) {
	working := []domain.Interval{{Start: 9*60 + 15, End: 11 * 60}}
	day := NewDay(working, nil, nil, "")

	assert.Equal(t, []types.TimeString{"09:15", "09:45", "10:15"}, day.Slots(30, 30, 0))
}

func TestSlots_SplitWorkingDay(t *testing.T) {
	working := []domain.Interval{{Start: 14 * 60, End: 15 * 60}, {Start: 9 * 60, End: 10 * 60}}
	day := NewDay(working, nil, nil, "")

	assert.Equal(t, []types.TimeString{"09:00", "09:30", "14:00", "14:30"}, day.Slots(30, 30, 0))
}

func TestSlots_EarliestCutoff(t *testing.T) {
	day := NewDay(morning, nil, nil, "")

	assert.Equal(t, []types.TimeString{"10:30", "11:00"}, day.Slots(30, 60, 10*60+1))
}

func TestSlots_NeverIntersectBusy(t *testing.T) {
	blocks := []*domain.BlockedInterval{block("09:40", "09:50")}
	appts := []*domain.Appointment{
		appointment("a1", "10:15", 20, domain.StatusPending),
		appointment("a2", "11:00", 15, domain.StatusCompleted),
	}
	day := NewDay(morning, blocks, appts, "")

	for _, s := range day.Slots(5, 25, 0) {
		want := domain.Interval{Start: s.Minutes(), End: s.Minutes() + 25}
		for _, b := range blocks {
			assert.False(t, want.Overlaps(b.Interval()), "slot %s intersects block", s)
		}
		for _, a := range appts {
			assert.False(t, want.Overlaps(a.Occupied()), "slot %s intersects appointment %s", s, a.ID)
		}
	}
}

func TestAccepts(t *testing.T) {
	appts := []*domain.Appointment{appointment("a1", "10:00", 60, domain.StatusConfirmed)}
	day := NewDay(morning, nil, appts, "")

	assert.True(t, day.Accepts(domain.Interval{Start: 540, End: 600}, 0))
	assert.False(t, day.Accepts(domain.Interval{Start: 570, End: 630}, 0))
	assert.True(t, day.Accepts(domain.Interval{Start: 660, End: 720}, 0))
	assert.False(t, day.Accepts(domain.Interval{Start: 690, End: 750}, 0))
	// не по сетке, но свободно
	assert.True(t, day.Accepts(domain.Interval{Start: 545, End: 595}, 0))
	// в прошлом
	assert.False(t, day.Accepts(domain.Interval{Start: 540, End: 600}, 541))
}

func TestAccepts_ExcludesSelf(t *testing.T) {
	appts := []*domain.Appointment{appointment("a1", "10:00", 60, domain.StatusConfirmed)}

	assert.False(t, NewDay(morning, nil, appts, "").Accepts(domain.Interval{Start: 600, End: 660}, 0))
	assert.True(t, NewDay(morning, nil, appts, "a1").Accepts(domain.Interval{Start: 600, End: 660}, 0))
}

func TestSubtract(t *testing.T) {
	base := []domain.Interval{{Start: 0, End: 100}}

	got := Subtract(base, []domain.Interval{{Start: 20, End: 30}, {Start: 50, End: 60}, {Start: 90, End: 120}})

	assert.Equal(t, []domain.Interval{{Start: 0, End: 20}, {Start: 30, End: 50}, {Start: 60, End: 90}}, got)
	assert.Equal(t, []domain.Interval{{Start: 0, End: 100}}, base)
}

func TestSlots_TouchingWorkingIntervalsAgreeWithAccepts(t *testing.T) {
	working := []domain.Interval{{Start: 12 * 60, End: 15 * 60}, {Start: 9 * 60, End: 12 * 60}}
	day := NewDay(working, nil, nil, "")

	assert.Equal(t, []domain.Interval{{Start: 540, End: 900}}, day.Free())
	assert.Contains(t, day.Slots(30, 60, 0), types.TimeString("11:30"))
	assert.True(t, day.Accepts(domain.Interval{Start: 690, End: 750}, 0))
	for _, s := range day.Slots(30, 60, 0) {
		start := s.Minutes()
		assert.True(t, day.Accepts(domain.Interval{Start: start, End: start + 60}, 0), s)
	}
}
