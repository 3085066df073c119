package bulk

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

func sequentialIDs() model.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func template() model.Shift {
	return model.Shift{
		StartTime: "08:00",
		EndTime:   "16:00",
		SiteID:    "site-1",
		SiteName:  "Riverside Depot",
		PayRate:   14.5,
	}
}

func dates(shifts []model.Shift) []string {
	result := make([]string, len(shifts))
	for i, s := range shifts {
		result[i] = s.Date
	}
	return result
}

func TestCreateRecurringShifts_WeeklyMonWedFri(t *testing.T) {
	shifts, err := CreateRecurringShifts(template(), RecurrencePattern{
		Frequency:  FrequencyWeekly,
		DaysOfWeek: []int{1, 3, 5},
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-14",
	}, sequentialIDs())
	require.NoError(t, err)

	require.Len(t, shifts, 6)
	assert.Equal(t, []string{"2024-01-01", "2024-01-03", "2024-01-05", "2024-01-08", "2024-01-10", "2024-01-12"}, dates(shifts))

	seen := make(map[string]bool)
	for _, s := range shifts {
		assert.Equal(t, "id-1", s.RecurrenceID)
		assert.Equal(t, model.StatusDraft, s.Status)
		assert.Equal(t, "08:00", s.StartTime)
		assert.Equal(t, 14.5, s.PayRate)
		assert.False(t, seen[s.ID], "ids must be unique")
		seen[s.ID] = true
	}
}

func TestCreateRecurringShifts_Frequencies(t *testing.T) {
	tests := []struct {
		name     string
		pattern  RecurrencePattern
		expected []string
	}{
		{
			name:     "daily every other day",
			pattern:  RecurrencePattern{Frequency: FrequencyDaily, Interval: 2, StartDate: "2024-01-01", EndDate: "2024-01-07"},
			expected: []string{"2024-01-01", "2024-01-03", "2024-01-05", "2024-01-07"},
		},
		{
			name:     "weekly defaults to start weekday",
			pattern:  RecurrencePattern{Frequency: FrequencyWeekly, StartDate: "2024-01-03", EndDate: "2024-01-24"},
			expected: []string{"2024-01-03", "2024-01-10", "2024-01-17", "2024-01-24"},
		},
		{
			name:     "biweekly tuesdays",
			pattern:  RecurrencePattern{Frequency: FrequencyBiweekly, DaysOfWeek: []int{2}, StartDate: "2024-01-01", EndDate: "2024-01-31"},
			expected: []string{"2024-01-02", "2024-01-16", "2024-01-30"},
		},
		{
			name:     "monthly on the 15th",
			pattern:  RecurrencePattern{Frequency: FrequencyMonthly, DayOfMonth: 15, StartDate: "2024-01-01", EndDate: "2024-04-30"},
			expected: []string{"2024-01-15", "2024-02-15", "2024-03-15", "2024-04-15"},
		},
		{
			name:     "monthly on the 31st skips short months",
			pattern:  RecurrencePattern{Frequency: FrequencyMonthly, DayOfMonth: 31, StartDate: "2024-01-01", EndDate: "2024-04-30"},
			expected: []string{"2024-01-31", "2024-03-31"},
		},
		{
			name: "exclusions",
			pattern: RecurrencePattern{
				Frequency:  FrequencyWeekly,
				DaysOfWeek: []int{1, 3, 5},
				StartDate:  "2024-01-01",
				EndDate:    "2024-01-14",
				Exclusions: []string{"2024-01-03", "2024-01-12"},
			},
			expected: []string{"2024-01-01", "2024-01-05", "2024-01-08", "2024-01-10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shifts, err := CreateRecurringShifts(template(), tt.pattern, sequentialIDs())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dates(shifts))
		})
	}
}

func TestCreateRecurringShifts_KeepsTemplateStatus(t *testing.T) {
	tmpl := template()
	tmpl.Status = model.StatusPublished

	shifts, err := CreateRecurringShifts(tmpl, RecurrencePattern{
		Frequency: FrequencyDaily,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-02",
	}, sequentialIDs())
	require.NoError(t, err)

	require.Len(t, shifts, 2)
	assert.Equal(t, model.StatusPublished, shifts[0].Status)
}

func TestCreateRecurringShifts_InvalidPatterns(t *testing.T) {
	tests := []struct {
		name    string
		pattern RecurrencePattern
	}{
		{"unknown frequency", RecurrencePattern{Frequency: "hourly", StartDate: "2024-01-01", EndDate: "2024-01-02"}},
		{"missing frequency", RecurrencePattern{StartDate: "2024-01-01", EndDate: "2024-01-02"}},
		{"end before start", RecurrencePattern{Frequency: FrequencyDaily, StartDate: "2024-01-05", EndDate: "2024-01-02"}},
		{"bad weekday", RecurrencePattern{Frequency: FrequencyWeekly, DaysOfWeek: []int{7}, StartDate: "2024-01-01", EndDate: "2024-01-14"}},
		{"bad exclusion", RecurrencePattern{Frequency: FrequencyDaily, StartDate: "2024-01-01", EndDate: "2024-01-02", Exclusions: []string{"Jan 1"}}},
		{"bad start", RecurrencePattern{Frequency: FrequencyDaily, StartDate: "01/01/2024", EndDate: "2024-01-02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateRecurringShifts(template(), tt.pattern, sequentialIDs())
			require.Error(t, err)

			var validationErr *model.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestCreateRecurringShifts_InvalidTemplate(t *testing.T) {
	tmpl := template()
	tmpl.StartTime = "8am"

	_, err := CreateRecurringShifts(tmpl, RecurrencePattern{
		Frequency: FrequencyDaily,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-02",
	}, sequentialIDs())
	assert.Error(t, err)
}

func TestCreateRecurringShifts_TooManyShifts(t *testing.T) {
	_, err := CreateRecurringShifts(template(), RecurrencePattern{
		Frequency: FrequencyDaily,
		StartDate: "2024-01-01",
		EndDate:   "2027-12-31",
	}, sequentialIDs())

	var validationErr *model.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateShiftsFromRule(t *testing.T) {
	shifts, err := CreateShiftsFromRule(template(), "FREQ=WEEKLY;BYDAY=SA,SU", "2024-01-01", "2024-01-14", sequentialIDs())
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-06", "2024-01-07", "2024-01-13", "2024-01-14"}, dates(shifts))
	for _, s := range shifts {
		assert.Equal(t, "id-1", s.RecurrenceID)
		assert.Equal(t, model.StatusDraft, s.Status)
	}
}

func TestCreateShiftsFromRule_OneShiftPerPosition(t *testing.T) {
	tmpl := template()
	tmpl.PositionsOpen = 2

	shifts, err := CreateShiftsFromRule(tmpl, "FREQ=WEEKLY;BYDAY=SA", "2024-01-01", "2024-01-14", sequentialIDs())
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-06", "2024-01-06", "2024-01-13", "2024-01-13"}, dates(shifts))
	assert.Equal(t, []string{"id-2", "id-3", "id-4", "id-5"}, []string{shifts[0].ID, shifts[1].ID, shifts[2].ID, shifts[3].ID})
	for _, s := range shifts {
		assert.Equal(t, "id-1", s.RecurrenceID)
		assert.Equal(t, 1, s.PositionsOpen)
	}
}

func TestCreateRecurringShifts_PositionsCountTowardsLimit(t *testing.T) {
	tmpl := template()
	tmpl.PositionsOpen = 3

	// 366 days is under the limit, three posts a day is not
	_, err := CreateRecurringShifts(tmpl, RecurrencePattern{
		Frequency: FrequencyDaily,
		StartDate: "2024-01-01",
		EndDate:   "2024-12-31",
	}, sequentialIDs())

	var validationErr *model.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateShiftsFromRule_InvalidRule(t *testing.T) {
	_, err := CreateShiftsFromRule(template(), "NOT_A_RULE", "2024-01-01", "2024-01-14", sequentialIDs())

	var validationErr *model.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
