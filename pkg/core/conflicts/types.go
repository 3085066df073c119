package conflicts

// Severity ranks a conflict by how strongly it blocks an assignment.
// blocking > critical > warning > info > recommendation
type Severity string

const (
	SeverityBlocking       Severity = "blocking"
	SeverityCritical       Severity = "critical"
	SeverityWarning        Severity = "warning"
	SeverityInfo           Severity = "info"
	SeverityRecommendation Severity = "recommendation"
)

// ConflictType identifies which rule produced a conflict
type ConflictType string

const (
	// Base detector
	TypeLicenseExpired   ConflictType = "LICENSE_EXPIRED"
	TypeLicenseExpiring  ConflictType = "LICENSE_EXPIRING"
	TypeLicenseMissing   ConflictType = "LICENSE_MISSING"
	TypeDoubleBooking    ConflictType = "DOUBLE_BOOKING"
	TypeInsufficientRest ConflictType = "INSUFFICIENT_REST"
	TypeDailyHours       ConflictType = "DAILY_HOURS_EXCEEDED"
	TypeWeeklyHours      ConflictType = "WEEKLY_HOURS_EXCEEDED"
	TypeOvertime         ConflictType = "OVERTIME"

	// Fatigue
	TypeConsecutiveDays ConflictType = "CONSECUTIVE_DAYS"
	TypeNoWeeklyRest    ConflictType = "NO_WEEKLY_REST"
	TypeNightShifts     ConflictType = "EXCESSIVE_NIGHT_SHIFTS"
	TypeShiftRotation   ConflictType = "RAPID_SHIFT_ROTATION"

	// Client and site
	TypeClientRestriction ConflictType = "CLIENT_RESTRICTION"
	TypeSiteBlacklisted   ConflictType = "SITE_BLACKLISTED"
	TypePairingRequired   ConflictType = "PAIRING_REQUIRED"
	TypeSiteCapacity      ConflictType = "SITE_CAPACITY_EXCEEDED"

	// Regulatory
	TypeMinorNightWork       ConflictType = "MINOR_NIGHT_WORK"
	TypeAnnualHours          ConflictType = "ANNUAL_HOURS_EXCEEDED"
	TypeInductionMissing     ConflictType = "SITE_INDUCTION_MISSING"
	TypeCertificationExpired ConflictType = "CERTIFICATION_EXPIRED"

	// Quality
	TypePreferenceMismatch ConflictType = "SHIFT_PREFERENCE_MISMATCH"
	TypeSkillGap           ConflictType = "SKILL_GAP"
	TypeLanguageGap        ConflictType = "LANGUAGE_REQUIREMENT_UNMET"
	TypeTransportRisk      ConflictType = "TRANSPORT_RISK"

	TypeFatigueRecommendation ConflictType = "FATIGUE_RISK"
)

// Conflict is a freshly computed finding about a candidate assignment
type Conflict struct {
	Type     ConflictType
	Severity Severity
	Message  string
	Details  map[string]any
}

// ValidationReport is the result of the base conflict detector
type ValidationReport struct {
	Valid bool
	// Conflicts are blocking findings
	Conflicts []Conflict
	// Warnings holds warning and info findings
	Warnings []Conflict
}

// Rules holds the working-time thresholds used by the detector and the rules engine
type Rules struct {
	MinRestHours           float64
	MaxDailyHours          float64
	MaxWeeklyHours         float64
	OvertimeThresholdHours float64
	LicenseGraceDays       int

	ConsecutiveDaysWarning  int
	ConsecutiveDaysBlocking int
	WeeklyRestHours         float64
	MaxNightShiftsPerWeek   int
	RotationWindowHours     float64

	DefaultSiteCapacity int
	MinimumAge          int
	MaxAnnualHours      float64
}

// DefaultRules returns the UK working-time defaults
func DefaultRules() Rules {
	return Rules{
		MinRestHours:           11,
		MaxDailyHours:          12,
		MaxWeeklyHours:         48,
		OvertimeThresholdHours: 40,
		LicenseGraceDays:       14,

		ConsecutiveDaysWarning:  10,
		ConsecutiveDaysBlocking: 12,
		WeeklyRestHours:         24,
		MaxNightShiftsPerWeek:   5,
		RotationWindowHours:     48,

		DefaultSiteCapacity: 10,
		MinimumAge:          18,
		MaxAnnualHours:      48 * 48,
	}
}
