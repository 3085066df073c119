package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

func TestShiftInterval_DayShift(t *testing.T) {
	interval, err := ShiftInterval(model.Shift{ID: "s1", Date: "2024-03-04", StartTime: "08:00", EndTime: "16:30"})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), interval.Start)
	assert.Equal(t, time.Date(2024, 3, 4, 16, 30, 0, 0, time.UTC), interval.End)
	assert.InDelta(t, 8.5, interval.Hours(), 0.0001)
}

func TestShiftInterval_OvernightWrapsToNextDay(t *testing.T) {
	interval, err := ShiftInterval(model.Shift{ID: "s1", Date: "2024-03-04", StartTime: "22:00", EndTime: "06:00"})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 5, 6, 0, 0, 0, time.UTC), interval.End)
	assert.InDelta(t, 8.0, interval.Hours(), 0.0001)
}

func TestShiftInterval_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		shift model.Shift
	}{
		{"bad date", model.Shift{Date: "04/03/2024", StartTime: "08:00", EndTime: "16:00"}},
		{"bad start", model.Shift{Date: "2024-03-04", StartTime: "8am", EndTime: "16:00"}},
		{"bad end", model.Shift{Date: "2024-03-04", StartTime: "08:00", EndTime: "25:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ShiftInterval(tt.shift)
			require.Error(t, err)

			var validationErr *model.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestInterval_OverlapsIsSymmetric(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	tests := []struct {
		name     string
		a, b     Interval
		expected bool
	}{
		{"disjoint", Interval{at(8), at(12)}, Interval{at(13), at(17)}, false},
		{"touching", Interval{at(8), at(12)}, Interval{at(12), at(16)}, false},
		{"partial", Interval{at(8), at(12)}, Interval{at(11), at(16)}, true},
		{"containment", Interval{at(8), at(20)}, Interval{at(10), at(12)}, true},
		{"identical", Interval{at(8), at(12)}, Interval{at(8), at(12)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.expected, tt.b.Overlaps(tt.a))
		})
	}
}

func TestWeekStart_IsSunday(t *testing.T) {
	// Wednesday 2024-01-10 -> Sunday 2024-01-07
	assert.Equal(t, "2024-01-07", FormatDate(WeekStart(time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC))))
	// Sunday maps to itself
	assert.Equal(t, "2024-01-07", FormatDate(WeekStart(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC))))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 31, DaysBetween(a, b))
	assert.Equal(t, -31, DaysBetween(b, a))
}

func TestClassifyShift(t *testing.T) {
	tests := []struct {
		start    string
		expected model.ShiftType
	}{
		{"06:00", model.ShiftTypeDay},
		{"13:59", model.ShiftTypeDay},
		{"14:00", model.ShiftTypeEvening},
		{"21:59", model.ShiftTypeEvening},
		{"22:00", model.ShiftTypeNight},
		{"03:00", model.ShiftTypeNight},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got, err := ClassifyShift(model.Shift{Date: "2024-01-01", StartTime: tt.start, EndTime: "23:00"})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	explicit, err := ClassifyShift(model.Shift{Date: "2024-01-01", StartTime: "09:00", EndTime: "17:00", ShiftType: model.ShiftTypeNight})
	require.NoError(t, err)
	assert.Equal(t, model.ShiftTypeNight, explicit)
}

func TestAgeOn(t *testing.T) {
	birth := time.Date(2006, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 17, AgeOn(birth, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 18, AgeOn(birth, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
}
