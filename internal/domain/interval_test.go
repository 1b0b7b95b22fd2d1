package domain

import (
	"testing"

	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"touching end to start", Interval{540, 600}, Interval{600, 660}, false},
		{"touching start to end", Interval{600, 660}, Interval{540, 600}, false},
		{"partial", Interval{540, 600}, Interval{570, 630}, true},
		{"contained", Interval{540, 720}, Interval{600, 630}, true},
		{"identical", Interval{600, 660}, Interval{600, 660}, true},
		{"disjoint", Interval{540, 560}, Interval{600, 660}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestNewInterval(t *testing.T) {
	iv, err := NewInterval(types.MustTimeString("10:00"), 60)
	require.NoError(t, err)
	assert.Equal(t, Interval{Start: 600, End: 660}, iv)
	assert.Equal(t, "10:00-11:00", iv.String())

	_, err = NewInterval(types.TimeString("25:00"), 60)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewInterval(types.MustTimeString("10:00"), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBlockedInterval_Validate(t *testing.T) {
	start := types.MustTimeString("12:00")
	end := types.MustTimeString("13:00")

	whole := &BlockedInterval{WholeDay: true}
	require.NoError(t, whole.Validate())
	assert.Equal(t, Interval{Start: 0, End: types.MinutesPerDay}, whole.Interval())

	partial := &BlockedInterval{StartTime: &start, EndTime: &end}
	require.NoError(t, partial.Validate())
	assert.Equal(t, Interval{Start: 720, End: 780}, partial.Interval())

	inverted := &BlockedInterval{StartTime: &end, EndTime: &start}
	assert.ErrorIs(t, inverted.Validate(), ErrInvalidInput)

	mixed := &BlockedInterval{WholeDay: true, StartTime: &start}
	assert.ErrorIs(t, mixed.Validate(), ErrInvalidInput)

	missingEnd := &BlockedInterval{StartTime: &start}
	assert.ErrorIs(t, missingEnd.Validate(), ErrInvalidInput)
}

func TestCheckEligibility(t *testing.T) {
	svc := &Service{ID: "s1", DurationMinutes: 60, IsActive: true}
	emp := &Employee{ID: "e1", IsActive: true, ServiceIDs: []string{"s1"}}
	require.NoError(t, CheckEligibility(emp, svc))

	other := &Service{ID: "s2", DurationMinutes: 30, IsActive: true}
	assert.ErrorIs(t, CheckEligibility(emp, other), ErrEligibility)

	inactiveEmp := &Employee{ID: "e2", IsActive: false, ServiceIDs: []string{"s1"}}
	assert.ErrorIs(t, CheckEligibility(inactiveEmp, svc), ErrEligibility)

	inactiveSvc := &Service{ID: "s1", DurationMinutes: 60, IsActive: false}
	assert.ErrorIs(t, CheckEligibility(emp, inactiveSvc), ErrEligibility)
}
