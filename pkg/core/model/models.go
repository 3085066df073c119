package model

import (
	"math"
	"slices"
	"time"
)

// Urgency of an offered shift
type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

// ShiftType classifies a shift by when it starts
type ShiftType string

const (
	ShiftTypeDay     ShiftType = "day"
	ShiftTypeEvening ShiftType = "evening"
	ShiftTypeNight   ShiftType = "night"
)

// OfferedToAll is the OfferedTo value for shifts open to every eligible guard
const OfferedToAll = "all"

// Shift is a bookable unit of work at a site.
// Date is "2006-01-02", StartTime and EndTime are "15:04" wall-clock times.
// An EndTime earlier than StartTime denotes an overnight shift.
type Shift struct {
	ID        string
	Date      string
	StartTime string
	EndTime   string

	GuardID  string // empty until assigned
	SiteID   string
	SiteName string
	ClientID string
	Status   ShiftStatus

	// Offer metadata
	OfferedTo  string
	OfferedAt  *time.Time
	ExpiresAt  *time.Time
	Urgency    Urgency
	PayRate    float64
	ClaimCount int
	ViewCount  int

	// Requirements
	RequiredSkills     []string
	RequiredTraining   []string
	RequiredLanguages  []string
	RequiredExperience float64 // years
	RequiresPairing    bool
	MaxGuards          int
	PositionsOpen      int

	// ShiftType overrides the type derived from StartTime when set
	ShiftType          ShiftType
	PublicTransport24h bool

	RecurrenceID string
	CopiedFromID string
	Notes        string
}

// IsAssigned returns true if a guard has been assigned to the shift
func (s Shift) IsAssigned() bool {
	return s.GuardID != ""
}

// Positions returns how many guards a posting needs, at least 1. Each stored shift
// is one post, so templates asking for more are expanded into one shift per position.
func (s Shift) Positions() int {
	return max(1, s.PositionsOpen)
}

// IsOpen returns true if guards may still claim or apply for the shift
func (s Shift) IsOpen() bool {
	if s.IsAssigned() {
		return false
	}
	return s.Status == StatusPublished || s.Status == StatusUnassigned || s.Status == StatusOffered
}

// IsInactive returns true for shifts that no longer occupy a guard's time
func (s Shift) IsInactive() bool {
	return s.Status == StatusCancelled || s.Status == StatusRejected
}

// Certification is a dated qualification held by a guard (first aid, etc.)
type Certification struct {
	Name   string
	Expiry string // "2006-01-02"
}

// Guard is a staff member eligible for shifts. The scheduling core never mutates guards.
type Guard struct {
	ID    string
	Name  string
	Email string

	// LicenseExpiry is the SIA license expiry date ("2006-01-02"), empty if unknown
	LicenseExpiry string
	DateOfBirth   string

	Skills              []string
	CompletedTraining   []string
	YearsExperience     float64
	PreferredShiftTypes []ShiftType
	Languages           []string
	HasVehicle          bool
	Certifications      []Certification

	// ReliabilityScore is a supervisor-assessed 0-100 score. When nil the score is
	// derived from attendance.
	ReliabilityScore *float64
}

// HasSkill reports whether the guard lists the skill (case-insensitive)
func (g Guard) HasSkill(skill string) bool {
	return containsFold(g.Skills, skill)
}

// HasTraining reports whether the guard completed the training (case-insensitive)
func (g Guard) HasTraining(training string) bool {
	return containsFold(g.CompletedTraining, training)
}

// SpeaksLanguage reports whether the guard speaks the language (case-insensitive)
func (g Guard) SpeaksLanguage(language string) bool {
	return containsFold(g.Languages, language)
}

// PrefersShiftType reports whether the shift type is in the guard's preferences
func (g Guard) PrefersShiftType(t ShiftType) bool {
	return slices.Contains(g.PreferredShiftTypes, t)
}

// DefaultReliabilityScore is used when a guard has no reliability history
const DefaultReliabilityScore = 70.0

// GuardHistory is supplied per call by the caller; it is never persisted by the core
type GuardHistory struct {
	// ReliabilityScore is 0-100; nil means no history
	ReliabilityScore *float64
	SitesWorked      []string
	SiteVisits       map[string]int
	ScheduledShifts  []Shift
}

// Reliability returns the reliability score or the default when none is recorded
func (h GuardHistory) Reliability() float64 {
	if h.ReliabilityScore == nil {
		return DefaultReliabilityScore
	}
	return *h.ReliabilityScore
}

// AttendanceReliability scores completed shifts against no-shows on a 0-100 scale,
// to one decimal. It returns nil until the guard has finished at least one shift.
func AttendanceReliability(completed, noShows int) *float64 {
	finished := completed + noShows
	if finished <= 0 {
		return nil
	}
	score := math.Round(float64(completed)/float64(finished)*1000) / 10
	return &score
}

// HasWorkedAt reports whether the guard has any recorded history at the site
func (h GuardHistory) HasWorkedAt(siteID string) bool {
	return h.SiteVisits[siteID] > 0 || slices.Contains(h.SitesWorked, siteID)
}

// RankedGuard is a candidate for a shift with its match score.
// Recommended candidates are the only ones auto-fill will assign.
type RankedGuard struct {
	Guard       Guard
	Score       float64
	Recommended bool
}
