package conflicts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

type mockLookup struct {
	restricted  bool
	blacklisted bool
	notInducted bool
	err         error
}

func (m *mockLookup) IsClientRestricted(ctx context.Context, clientID, guardID string) (bool, error) {
	return m.restricted, m.err
}

func (m *mockLookup) IsSiteBlacklisted(ctx context.Context, siteID, guardID string) (bool, error) {
	return m.blacklisted, m.err
}

func (m *mockLookup) HasSiteInduction(ctx context.Context, siteID, guardID string) (bool, error) {
	return !m.notInducted, m.err
}

// fixedRule returns the same findings every time it is evaluated
type fixedRule struct {
	group    RuleGroup
	findings []Finding
}

func (r *fixedRule) Name() string     { return "Fixed" }
func (r *fixedRule) Group() RuleGroup { return r.group }

func (r *fixedRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	return r.findings, nil
}

func engineGuard() model.Guard {
	guard := testGuard()
	guard.HasVehicle = true
	return guard
}

func evaluate(t *testing.T, engine *Engine, input EvaluationInput, options Options) *AdvancedReport {
	t.Helper()
	if input.Now.IsZero() {
		input.Now = testNow
	}
	report, err := engine.Evaluate(context.Background(), input, options)
	require.NoError(t, err)
	return report
}

// dailyShifts returns one shift per day from start for n days
func dailyShifts(startDay, n int, startTime, endTime string) []model.Shift {
	shifts := make([]model.Shift, 0, n)
	for i := 0; i < n; i++ {
		date := testNow.AddDate(0, 0, startDay+i).Format("2006-01-02")
		shifts = append(shifts, testShift(fmt.Sprintf("s%d", i), date, startTime, endTime))
	}
	return shifts
}

func TestEngine_CleanAssignment(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())

	report := evaluate(t, engine, EvaluationInput{
		Shift: testShift("c", "2024-06-10", "09:00", "17:00"),
		Guard: engineGuard(),
	}, DefaultOptions())

	assert.True(t, report.Valid)
	assert.Equal(t, 0, report.Summary.Total)
	assert.Equal(t, 0, report.FatigueScore)
	assert.Equal(t, FatigueRiskLow, report.FatigueRisk)
}

func TestEngine_IncludesBaseDetectorFindings(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())
	guard := engineGuard()
	guard.LicenseExpiry = "2024-06-09"

	report := evaluate(t, engine, EvaluationInput{
		Shift: testShift("c", "2024-06-10", "09:00", "17:00"),
		Guard: guard,
	}, Options{})

	assert.False(t, report.Valid)
	assert.Equal(t, []ConflictType{TypeLicenseExpired}, conflictTypes(report.Conflicts.Blocking))
	assert.Equal(t, 1, report.Summary.Blocking)
	assert.Equal(t, 1, report.Summary.Total)
}

func TestEngine_ClientAndSiteLookups(t *testing.T) {
	lookup := &mockLookup{restricted: true, blacklisted: true, notInducted: true}
	engine := NewEngine(lookup, DefaultRules())

	shift := testShift("c", "2024-06-10", "09:00", "17:00")
	shift.ClientID = "client-1"

	t.Run("all groups enabled", func(t *testing.T) {
		report := evaluate(t, engine, EvaluationInput{Shift: shift, Guard: engineGuard()}, DefaultOptions())

		assert.False(t, report.Valid)
		assert.ElementsMatch(t,
			[]ConflictType{TypeClientRestriction, TypeSiteBlacklisted, TypeInductionMissing},
			conflictTypes(report.Conflicts.Blocking))
	})

	t.Run("groups disabled", func(t *testing.T) {
		options := DefaultOptions()
		options.ClientRules = false
		options.Regulatory = false

		report := evaluate(t, engine, EvaluationInput{Shift: shift, Guard: engineGuard()}, options)

		assert.True(t, report.Valid)
		assert.Empty(t, report.Conflicts.Blocking)
	})
}

func TestEngine_LookupErrorPropagates(t *testing.T) {
	lookupErr := errors.New("connection refused")
	engine := NewEngine(&mockLookup{err: lookupErr}, DefaultRules())

	shift := testShift("c", "2024-06-10", "09:00", "17:00")
	shift.ClientID = "client-1"

	_, err := engine.Evaluate(context.Background(), EvaluationInput{Shift: shift, Guard: engineGuard(), Now: testNow}, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, lookupErr)
	assert.Contains(t, err.Error(), "ClientRestriction")
}

func TestEngine_ConsecutiveDays(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())
	candidate := testShift("c", "2024-06-10", "08:00", "16:00")

	t.Run("ten days is a warning", func(t *testing.T) {
		report := evaluate(t, engine, EvaluationInput{
			Shift:         candidate,
			Guard:         engineGuard(),
			GuardSchedule: dailyShifts(-9, 9, "08:00", "16:00"),
		}, DefaultOptions())

		assert.Equal(t, []ConflictType{TypeConsecutiveDays}, conflictTypes(report.Conflicts.Warnings))
		assert.Equal(t, 10, report.Conflicts.Warnings[0].Details["consecutiveDays"])
		assert.Equal(t, FatigueConsecutiveDaysWarning, report.FatigueScore)
		assert.True(t, report.Valid)
	})

	t.Run("twelve days is blocking", func(t *testing.T) {
		report := evaluate(t, engine, EvaluationInput{
			Shift:         candidate,
			Guard:         engineGuard(),
			GuardSchedule: dailyShifts(-11, 11, "08:00", "16:00"),
		}, DefaultOptions())

		assert.Equal(t, []ConflictType{TypeConsecutiveDays}, conflictTypes(report.Conflicts.Blocking))
		assert.Equal(t, FatigueConsecutiveDaysBlocking, report.FatigueScore)
		assert.Equal(t, FatigueRiskModerate, report.FatigueRisk)
		assert.False(t, report.Valid)
	})

	t.Run("run counts days after the candidate", func(t *testing.T) {
		schedule := append(dailyShifts(-5, 5, "08:00", "16:00"), dailyShifts(1, 4, "08:00", "16:00")...)
		for i := range schedule {
			schedule[i].ID = fmt.Sprintf("s%d", i)
		}

		report := evaluate(t, engine, EvaluationInput{
			Shift:         candidate,
			Guard:         engineGuard(),
			GuardSchedule: schedule,
		}, DefaultOptions())

		require.NotEmpty(t, report.Conflicts.Warnings)
		assert.Equal(t, 10, report.Conflicts.Warnings[0].Details["consecutiveDays"])
	})
}

func TestEngine_WeeklyRestAndStrictMode(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())

	// Sunday 2024-06-09 to Saturday 2024-06-15, 08:00-20:00 every day leaves 12 hour gaps
	schedule := dailyShifts(-1, 7, "08:00", "20:00")
	candidate := schedule[1]
	input := EvaluationInput{Shift: candidate, Guard: engineGuard(), GuardSchedule: schedule}

	report := evaluate(t, engine, input, DefaultOptions())
	assert.Equal(t, []ConflictType{TypeNoWeeklyRest}, conflictTypes(report.Conflicts.Critical))
	assert.Equal(t, 12.0, report.Conflicts.Critical[0].Details["longestRestHours"])
	assert.Equal(t, FatigueNoWeeklyRest, report.FatigueScore)
	assert.True(t, report.Valid, "critical findings do not invalidate outside strict mode")

	options := DefaultOptions()
	options.StrictMode = true
	strict := evaluate(t, engine, input, options)
	assert.False(t, strict.Valid)
}

func TestEngine_ExcessiveNightShifts(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())

	report := evaluate(t, engine, EvaluationInput{
		Shift:         testShift("c", "2024-06-10", "22:00", "06:00"),
		Guard:         engineGuard(),
		GuardSchedule: dailyShifts(-5, 5, "22:00", "06:00"),
	}, DefaultOptions())

	assert.Equal(t, []ConflictType{TypeNightShifts}, conflictTypes(report.Conflicts.Warnings))
	assert.Equal(t, 5, report.Conflicts.Warnings[0].Details["nightShifts"])
	assert.Equal(t, FatigueNightShifts, report.FatigueScore)
}

func TestEngine_ExplicitNightTypeCountsAsNight(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())

	schedule := dailyShifts(-5, 5, "20:00", "04:00")
	for i := range schedule {
		schedule[i].ShiftType = model.ShiftTypeNight
	}
	shift := testShift("c", "2024-06-10", "20:00", "04:00")
	shift.ShiftType = model.ShiftTypeNight

	guard := engineGuard()
	guard.HasVehicle = false

	report := evaluate(t, engine, EvaluationInput{Shift: shift, Guard: guard, GuardSchedule: schedule}, DefaultOptions())

	assert.Equal(t, []ConflictType{TypeNightShifts}, conflictTypes(report.Conflicts.Warnings))
	assert.Equal(t, []ConflictType{TypeTransportRisk}, conflictTypes(report.Conflicts.Info))

	t.Run("rotation against an untyped day shift", func(t *testing.T) {
		report := evaluate(t, engine, EvaluationInput{
			Shift:         shift,
			Guard:         engineGuard(),
			GuardSchedule: []model.Shift{testShift("day", "2024-06-09", "08:00", "16:00")},
		}, DefaultOptions())
		assert.Equal(t, []ConflictType{TypeShiftRotation}, conflictTypes(report.Conflicts.Warnings))
	})
}

func TestEngine_NightShiftsBelowLimit(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())

	report := evaluate(t, engine, EvaluationInput{
		Shift:         testShift("c", "2024-06-10", "22:00", "06:00"),
		Guard:         engineGuard(),
		GuardSchedule: dailyShifts(-4, 4, "22:00", "06:00"),
	}, DefaultOptions())

	assert.NotContains(t, conflictTypes(report.Conflicts.Warnings), TypeNightShifts)
}

func TestEngine_ShiftRotation(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())

	report := evaluate(t, engine, EvaluationInput{
		Shift:         testShift("c", "2024-06-10", "22:00", "06:00"),
		Guard:         engineGuard(),
		GuardSchedule: []model.Shift{testShift("day", "2024-06-09", "08:00", "16:00")},
	}, DefaultOptions())

	assert.Equal(t, []ConflictType{TypeShiftRotation}, conflictTypes(report.Conflicts.Warnings))
	assert.Equal(t, "day", report.Conflicts.Warnings[0].Details["otherShiftId"])
	assert.Equal(t, FatigueShiftRotation, report.FatigueScore)
}

func TestEngine_FatigueDisabled(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())
	options := DefaultOptions()
	options.Fatigue = false

	report := evaluate(t, engine, EvaluationInput{
		Shift:         testShift("c", "2024-06-10", "08:00", "16:00"),
		Guard:         engineGuard(),
		GuardSchedule: dailyShifts(-11, 11, "08:00", "16:00"),
	}, options)

	assert.True(t, report.Valid)
	assert.Equal(t, 0, report.FatigueScore)
}

func TestEngine_FatigueScoreIsUnclampedAndRecommends(t *testing.T) {
	engine := NewEngineWithRules(nil, DefaultRules(),
		&fixedRule{group: GroupFatigue, findings: []Finding{
			{Conflict: Conflict{Type: TypeConsecutiveDays, Severity: SeverityWarning}, FatiguePoints: 70},
			{Conflict: Conflict{Type: TypeNightShifts, Severity: SeverityWarning}, FatiguePoints: 50},
		}},
	)

	report := evaluate(t, engine, EvaluationInput{
		Shift: testShift("c", "2024-06-10", "09:00", "17:00"),
		Guard: engineGuard(),
	}, DefaultOptions())

	assert.Equal(t, 120, report.FatigueScore)
	assert.Equal(t, FatigueRiskSevere, report.FatigueRisk)
	assert.Equal(t, []ConflictType{TypeFatigueRecommendation}, conflictTypes(report.Conflicts.Recommendations))
	assert.Equal(t, 3, report.Summary.Total)
}

func TestCalculateFatigueRisk(t *testing.T) {
	tests := []struct {
		score    int
		expected FatigueRisk
	}{
		{0, FatigueRiskLow},
		{30, FatigueRiskLow},
		{31, FatigueRiskModerate},
		{60, FatigueRiskModerate},
		{61, FatigueRiskHigh},
		{80, FatigueRiskHigh},
		{81, FatigueRiskSevere},
		{135, FatigueRiskSevere},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score %d", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateFatigueRisk(tt.score))
		})
	}
}

func TestEngine_SiteCapacityAndPairing(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())

	candidate := testShift("c", "2024-06-10", "09:00", "17:00")
	candidate.MaxGuards = 2

	other := func(id, guardID string) model.Shift {
		s := testShift(id, "2024-06-10", "12:00", "20:00")
		s.GuardID = guardID
		return s
	}

	t.Run("at capacity", func(t *testing.T) {
		report := evaluate(t, engine, EvaluationInput{
			Shift:     candidate,
			Guard:     engineGuard(),
			AllShifts: []model.Shift{other("o1", "g2"), other("o2", "g3")},
		}, DefaultOptions())

		assert.Equal(t, []ConflictType{TypeSiteCapacity}, conflictTypes(report.Conflicts.Blocking))
		assert.Equal(t, 2, report.Conflicts.Blocking[0].Details["guardsOnSite"])
	})

	t.Run("same guard counted once", func(t *testing.T) {
		report := evaluate(t, engine, EvaluationInput{
			Shift:     candidate,
			Guard:     engineGuard(),
			AllShifts: []model.Shift{other("o1", "g2"), other("o2", "g2")},
		}, DefaultOptions())

		assert.Empty(t, report.Conflicts.Blocking)
	})

	t.Run("pairing with no partner", func(t *testing.T) {
		paired := testShift("c", "2024-06-10", "09:00", "17:00")
		paired.RequiresPairing = true

		report := evaluate(t, engine, EvaluationInput{Shift: paired, Guard: engineGuard()}, DefaultOptions())
		assert.Equal(t, []ConflictType{TypePairingRequired}, conflictTypes(report.Conflicts.Warnings))

		report = evaluate(t, engine, EvaluationInput{
			Shift:     paired,
			Guard:     engineGuard(),
			AllShifts: []model.Shift{other("o1", "g2")},
		}, DefaultOptions())
		assert.Empty(t, report.Conflicts.Warnings)
	})
}

func TestEngine_MinorNightWork(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())

	tests := []struct {
		name        string
		dateOfBirth string
		start       string
		end         string
		blocked     bool
	}{
		{"17 year old on nights", "2007-01-01", "22:00", "06:00", true},
		{"17 year old on days", "2007-01-01", "09:00", "17:00", false},
		{"18th birthday on nights", "2006-06-10", "22:00", "06:00", false},
		{"17 year old finishing at midnight", "2007-01-01", "16:00", "00:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := engineGuard()
			guard.DateOfBirth = tt.dateOfBirth

			report := evaluate(t, engine, EvaluationInput{
				Shift: testShift("c", "2024-06-10", tt.start, tt.end),
				Guard: guard,
			}, DefaultOptions())

			if tt.blocked {
				assert.Equal(t, []ConflictType{TypeMinorNightWork}, conflictTypes(report.Conflicts.Blocking))
			} else {
				assert.Empty(t, report.Conflicts.Blocking)
			}
		})
	}
}

func TestEngine_AnnualHours(t *testing.T) {
	rules := DefaultRules()
	rules.MaxAnnualHours = 16
	engine := NewEngine(nil, rules)

	report := evaluate(t, engine, EvaluationInput{
		Shift:         testShift("c", "2024-06-10", "09:00", "17:00"),
		Guard:         engineGuard(),
		GuardSchedule: []model.Shift{testShift("jan", "2024-01-15", "09:00", "17:00")},
	}, DefaultOptions())

	assert.Equal(t, []ConflictType{TypeAnnualHours}, conflictTypes(report.Conflicts.Critical))
	assert.Equal(t, 2024, report.Conflicts.Critical[0].Details["year"])
}

func TestEngine_CertificationExpiry(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())
	guard := engineGuard()
	guard.Certifications = []model.Certification{
		{Name: "First Aid", Expiry: "2024-06-01"},
		{Name: "Fire Marshal", Expiry: "2025-01-01"},
		{Name: "Door Supervision"},
	}

	report := evaluate(t, engine, EvaluationInput{
		Shift: testShift("c", "2024-06-10", "09:00", "17:00"),
		Guard: guard,
	}, DefaultOptions())

	require.Equal(t, []ConflictType{TypeCertificationExpired}, conflictTypes(report.Conflicts.Warnings))
	assert.Equal(t, "First Aid", report.Conflicts.Warnings[0].Details["certification"])
}

func TestEngine_QualityRules(t *testing.T) {
	engine := NewEngine(nil, DefaultRules())

	guard := engineGuard()
	guard.HasVehicle = false
	guard.PreferredShiftTypes = []model.ShiftType{model.ShiftTypeDay}
	guard.Skills = []string{"cctv"}
	guard.Languages = []string{"English"}

	shift := testShift("c", "2024-06-10", "22:00", "06:00")
	shift.RequiredSkills = []string{"CCTV", "K9 Handling"}
	shift.RequiredLanguages = []string{"english", "Polish"}

	report := evaluate(t, engine, EvaluationInput{Shift: shift, Guard: guard}, DefaultOptions())

	assert.Equal(t, []ConflictType{TypePreferenceMismatch}, conflictTypes(report.Conflicts.Recommendations))
	assert.Equal(t, []ConflictType{TypeSkillGap}, conflictTypes(report.Conflicts.Warnings))
	assert.Equal(t, []string{"K9 Handling"}, report.Conflicts.Warnings[0].Details["missingSkills"])
	assert.ElementsMatch(t, []ConflictType{TypeLanguageGap, TypeTransportRisk}, conflictTypes(report.Conflicts.Info))
	assert.True(t, report.Valid)

	t.Run("public transport removes transport risk", func(t *testing.T) {
		shift.PublicTransport24h = true
		report := evaluate(t, engine, EvaluationInput{Shift: shift, Guard: guard}, DefaultOptions())
		assert.Equal(t, []ConflictType{TypeLanguageGap}, conflictTypes(report.Conflicts.Info))
	})
}

func TestDefaultRuleSet_CoversEveryGroup(t *testing.T) {
	groups := make(map[RuleGroup]int)
	for _, rule := range DefaultRuleSet() {
		groups[rule.Group()]++
	}

	assert.Equal(t, map[RuleGroup]int{
		GroupFatigue:    4,
		GroupClient:     4,
		GroupRegulatory: 4,
		GroupQuality:    4,
	}, groups)
}
