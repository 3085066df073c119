package conflicts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func testGuard() model.Guard {
	return model.Guard{ID: "g1", Name: "Alice Smith", LicenseExpiry: "2030-01-01"}
}

func testShift(id, date, start, end string) model.Shift {
	return model.Shift{
		ID:        id,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		GuardID:   "g1",
		SiteID:    "site-1",
		SiteName:  "Riverside Depot",
		Status:    model.StatusAssigned,
	}
}

func conflictTypes(conflicts []Conflict) []ConflictType {
	types := make([]ConflictType, len(conflicts))
	for i, c := range conflicts {
		types[i] = c.Type
	}
	return types
}

func TestValidateShift_CleanAssignment(t *testing.T) {
	shift := testShift("s1", "2024-06-10", "09:00", "17:00")

	report, err := ValidateShift(shift, testGuard(), nil, nil, testNow, DefaultRules())
	require.NoError(t, err)

	assert.True(t, report.Valid)
	assert.Empty(t, report.Conflicts)
	assert.Empty(t, report.Warnings)
}

func TestValidateShift_LicenseExpired(t *testing.T) {
	guard := testGuard()
	guard.LicenseExpiry = "2024-06-09" // yesterday
	shift := testShift("s1", "2024-06-10", "09:00", "17:00")

	report, err := ValidateShift(shift, guard, nil, nil, testNow, DefaultRules())
	require.NoError(t, err)

	assert.False(t, report.Valid)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, TypeLicenseExpired, report.Conflicts[0].Type)
	assert.Equal(t, SeverityBlocking, report.Conflicts[0].Severity)
	assert.Contains(t, report.Conflicts[0].Message, "expired 1 days ago")
}

func TestValidateShift_LicenseExpiringWithinGracePeriod(t *testing.T) {
	tests := []struct {
		name        string
		expiry      string
		expectWarn  bool
		expectValid bool
	}{
		{"expires today", "2024-06-10", true, true},
		{"expires in 14 days", "2024-06-24", true, true},
		{"expires in 15 days", "2024-06-25", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := testGuard()
			guard.LicenseExpiry = tt.expiry

			report, err := ValidateShift(testShift("s1", "2024-06-10", "09:00", "17:00"), guard, nil, nil, testNow, DefaultRules())
			require.NoError(t, err)

			assert.Equal(t, tt.expectValid, report.Valid)
			if tt.expectWarn {
				assert.Equal(t, []ConflictType{TypeLicenseExpiring}, conflictTypes(report.Warnings))
			} else {
				assert.Empty(t, report.Warnings)
			}
		})
	}
}

func TestValidateShift_MissingLicenseIsBlocking(t *testing.T) {
	guard := testGuard()
	guard.LicenseExpiry = ""

	report, err := ValidateShift(testShift("s1", "2024-06-10", "09:00", "17:00"), guard, nil, nil, testNow, DefaultRules())
	require.NoError(t, err)

	assert.False(t, report.Valid)
	assert.Equal(t, []ConflictType{TypeLicenseMissing}, conflictTypes(report.Conflicts))
}

func TestValidateShift_DoubleBooking(t *testing.T) {
	candidate := testShift("s1", "2024-06-10", "09:00", "17:00")
	existing := testShift("s2", "2024-06-10", "15:00", "23:00")
	existing.SiteName = "Harbour Gate"

	report, err := ValidateShift(candidate, testGuard(), []model.Shift{existing}, []model.Shift{existing}, testNow, DefaultRules())
	require.NoError(t, err)

	assert.False(t, report.Valid)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, TypeDoubleBooking, report.Conflicts[0].Type)
	assert.Contains(t, report.Conflicts[0].Message, "Harbour Gate")

	// The negative gap must not also be reported as a rest period violation
	assert.NotContains(t, conflictTypes(report.Warnings), TypeInsufficientRest)
}

func TestValidateShift_DoubleBookingIsSymmetric(t *testing.T) {
	a := testShift("a", "2024-06-10", "09:00", "17:00")
	b := testShift("b", "2024-06-10", "16:00", "20:00")
	all := []model.Shift{a, b}

	reportA, err := ValidateShift(a, testGuard(), all, nil, testNow, DefaultRules())
	require.NoError(t, err)
	reportB, err := ValidateShift(b, testGuard(), all, nil, testNow, DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, reportA.Valid, reportB.Valid)
	assert.Len(t, reportA.Conflicts, 1)
	assert.Len(t, reportB.Conflicts, 1)
}

func TestValidateShift_DoubleBookingIgnores(t *testing.T) {
	candidate := testShift("s1", "2024-06-10", "09:00", "17:00")

	cancelled := testShift("s2", "2024-06-10", "09:00", "17:00")
	cancelled.Status = model.StatusCancelled

	otherGuard := testShift("s3", "2024-06-10", "09:00", "17:00")
	otherGuard.GuardID = "g2"

	touching := testShift("s4", "2024-06-10", "17:00", "20:00")

	all := []model.Shift{candidate, cancelled, otherGuard, touching}

	report, err := ValidateShift(candidate, testGuard(), all, nil, testNow, DefaultRules())
	require.NoError(t, err)

	assert.True(t, report.Valid, "self, cancelled, other guards and touching shifts are not double bookings")
	assert.Empty(t, report.Conflicts)
}

func TestValidateShift_RestPeriodBoundary(t *testing.T) {
	previous := testShift("prev", "2024-06-10", "12:00", "20:00")

	tests := []struct {
		name       string
		start      string
		expectWarn bool
	}{
		{"exactly 11 hours", "07:00", false},
		{"10.9 hours", "06:54", true},
		{"12 hours", "08:00", false},
		{"back to back", "20:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date := "2024-06-11"
			end := "15:00"
			if tt.start == "20:00" {
				date = "2024-06-10"
				end = "23:00"
			}
			candidate := testShift("next", date, tt.start, end)

			report, err := ValidateShift(candidate, testGuard(), nil, []model.Shift{previous}, testNow, DefaultRules())
			require.NoError(t, err)

			var rest []Conflict
			for _, w := range report.Warnings {
				if w.Type == TypeInsufficientRest {
					rest = append(rest, w)
				}
			}

			if tt.expectWarn {
				require.Len(t, rest, 1)
			} else {
				assert.Empty(t, rest)
			}
		})
	}
}

func TestValidateShift_RestPeriodReportsOneDecimal(t *testing.T) {
	previous := testShift("prev", "2024-06-10", "12:00", "20:00")
	candidate := testShift("next", "2024-06-11", "06:54", "15:00")

	report, err := ValidateShift(candidate, testGuard(), nil, []model.Shift{previous}, testNow, DefaultRules())
	require.NoError(t, err)

	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0].Message, "10.9 hours")
	assert.Equal(t, 10.9, report.Warnings[0].Details["restHours"])
	assert.True(t, report.Valid, "rest violations are warnings")
}

func TestValidateShift_OvernightRestUsesNextDayEnd(t *testing.T) {
	// Overnight shift ends 06:00 on the 11th; a 14:00 start leaves only 8 hours
	overnight := testShift("night", "2024-06-10", "22:00", "06:00")
	candidate := testShift("day", "2024-06-11", "14:00", "20:00")

	report, err := ValidateShift(candidate, testGuard(), nil, []model.Shift{overnight}, testNow, DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, []ConflictType{TypeInsufficientRest}, conflictTypes(report.Warnings))
	assert.Contains(t, report.Warnings[0].Message, "8.0 hours")
}

func TestValidateShift_DailyHours(t *testing.T) {
	morning := testShift("am", "2024-06-10", "00:00", "06:00")
	candidate := testShift("pm", "2024-06-10", "17:00", "23:30")

	report, err := ValidateShift(candidate, testGuard(), nil, []model.Shift{morning}, testNow, DefaultRules())
	require.NoError(t, err)

	assert.Contains(t, conflictTypes(report.Warnings), TypeDailyHours)
	assert.True(t, report.Valid)
}

func TestValidateShift_DailyHoursAtCapDoesNotWarn(t *testing.T) {
	morning := testShift("am", "2024-06-10", "00:00", "06:00")
	candidate := testShift("pm", "2024-06-10", "17:00", "23:00")

	report, err := ValidateShift(candidate, testGuard(), nil, []model.Shift{morning}, testNow, DefaultRules())
	require.NoError(t, err)

	assert.NotContains(t, conflictTypes(report.Warnings), TypeDailyHours)
}

func TestValidateShift_WeeklyHoursAndOvertime(t *testing.T) {
	// Week of Sunday 2024-06-09: four 10 hour days already scheduled
	schedule := []model.Shift{
		testShift("mon", "2024-06-10", "08:00", "18:00"),
		testShift("tue", "2024-06-11", "08:00", "18:00"),
		testShift("wed", "2024-06-12", "08:00", "18:00"),
		testShift("thu", "2024-06-13", "08:00", "18:00"),
	}

	t.Run("overtime only", func(t *testing.T) {
		candidate := testShift("fri", "2024-06-14", "08:00", "13:00") // 45 hours
		report, err := ValidateShift(candidate, testGuard(), nil, schedule, testNow, DefaultRules())
		require.NoError(t, err)

		assert.Equal(t, []ConflictType{TypeOvertime}, conflictTypes(report.Warnings))
		assert.Equal(t, SeverityInfo, report.Warnings[0].Severity)
		assert.Equal(t, 5.0, report.Warnings[0].Details["overtimeHours"])
	})

	t.Run("over weekly cap", func(t *testing.T) {
		candidate := testShift("fri", "2024-06-14", "08:00", "18:00") // 50 hours
		report, err := ValidateShift(candidate, testGuard(), nil, schedule, testNow, DefaultRules())
		require.NoError(t, err)

		assert.Equal(t, []ConflictType{TypeWeeklyHours, TypeOvertime}, conflictTypes(report.Warnings))
	})

	t.Run("previous week not counted", func(t *testing.T) {
		candidate := testShift("sat", "2024-06-08", "08:00", "18:00")
		report, err := ValidateShift(candidate, testGuard(), nil, schedule, testNow, DefaultRules())
		require.NoError(t, err)

		assert.Empty(t, report.Warnings)
	})
}

func TestValidateShift_InvalidCandidateTime(t *testing.T) {
	candidate := testShift("s1", "2024-06-10", "9am", "17:00")

	_, err := ValidateShift(candidate, testGuard(), nil, nil, testNow, DefaultRules())
	require.Error(t, err)

	var validationErr *model.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
