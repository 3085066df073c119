// Package eligibility scores how well a guard fits an open shift.
//
// The score is a weighted sum of independent criteria totalling 100 points. Some criteria
// are mandatory: failing one makes the guard ineligible whatever the total.
package eligibility

import (
	"fmt"
	"math"
	"time"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

const (
	MaxScore = 100

	// EligibleThreshold is the minimum total score for an eligible guard
	EligibleThreshold = 50
)

// RecommendationLevel is a banded reading of the total score
type RecommendationLevel string

const (
	LevelHighlyRecommended RecommendationLevel = "highly_recommended"
	LevelRecommended       RecommendationLevel = "recommended"
	LevelAcceptable        RecommendationLevel = "acceptable"
	LevelNotRecommended    RecommendationLevel = "not_recommended"
)

// LevelFor maps a score onto its recommendation band
func LevelFor(score int) RecommendationLevel {
	switch {
	case score >= 85:
		return LevelHighlyRecommended
	case score >= 70:
		return LevelRecommended
	case score >= EligibleThreshold:
		return LevelAcceptable
	default:
		return LevelNotRecommended
	}
}

// CriterionResult is one criterion's contribution to the total
type CriterionResult struct {
	Score   int
	Passed  bool
	Weight  int
	Details string

	// Reason explains a failed criterion; empty when Passed
	Reason string
}

// Result is the scorer's verdict for one guard and shift
type Result struct {
	Eligible            bool
	Score               int
	MaxScore            int
	Percentage          float64
	Criteria            map[string]CriterionResult
	Reasons             []string
	RecommendationLevel RecommendationLevel
}

// Input is what every criterion sees. The shift's date and interval are resolved once.
type Input struct {
	Guard   model.Guard
	Shift   model.Shift
	History model.GuardHistory
	Now     time.Time

	ShiftDate     time.Time
	ShiftInterval timeutil.Interval
}

// Criterion defines the interface for eligibility criteria
type Criterion interface {
	// Key identifies the criterion in Result.Criteria
	Key() string

	// Weight is the most points the criterion can award
	Weight() int

	// Mandatory criteria make the guard ineligible when they fail
	Mandatory() bool

	// Evaluate scores the input between 0 and Weight.
	// Errors are reserved for malformed dates.
	Evaluate(input *Input) (CriterionResult, error)
}

// Scorer computes eligibility results. It holds no state beyond its clock reading and
// criteria, so scoring the same input twice yields the same result.
type Scorer struct {
	now      time.Time
	criteria []Criterion
}

// NewScorer creates a Scorer with the default criteria
func NewScorer(now time.Time) *Scorer {
	return NewScorerWithCriteria(now, DefaultCriteria()...)
}

// NewScorerWithCriteria creates a Scorer that evaluates only the given criteria
func NewScorerWithCriteria(now time.Time, criteria ...Criterion) *Scorer {
	return &Scorer{now: now, criteria: criteria}
}

// DefaultCriteria returns the seven standard criteria, weighted to total 100
func DefaultCriteria() []Criterion {
	return []Criterion{
		NewLicenseCriterion(DefaultLicenseWarningDays),
		&SkillsCriterion{},
		&ExperienceCriterion{},
		&ReliabilityCriterion{},
		&SiteFamiliarityCriterion{},
		&AvailabilityCriterion{},
		&TrainingCriterion{},
	}
}

// Score evaluates every criterion for guard on shift.
// Returns an error only when a date or time cannot be parsed.
func (s *Scorer) Score(guard model.Guard, shift model.Shift, history model.GuardHistory) (*Result, error) {
	interval, err := timeutil.ShiftInterval(shift)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve shift: %w", err)
	}

	input := &Input{
		Guard:         guard,
		Shift:         shift,
		History:       history,
		Now:           s.now,
		ShiftDate:     timeutil.StartOfDay(interval.Start),
		ShiftInterval: interval,
	}

	result := &Result{
		MaxScore: MaxScore,
		Criteria: make(map[string]CriterionResult, len(s.criteria)),
		Reasons:  []string{},
	}
	mandatoryFailed := false

	for _, criterion := range s.criteria {
		cr, err := criterion.Evaluate(input)
		if err != nil {
			return nil, fmt.Errorf("criterion %s failed: %w", criterion.Key(), err)
		}
		cr.Weight = criterion.Weight()

		result.Criteria[criterion.Key()] = cr
		result.Score += cr.Score

		if !cr.Passed {
			if cr.Reason != "" {
				result.Reasons = append(result.Reasons, cr.Reason)
			}
			if criterion.Mandatory() {
				mandatoryFailed = true
			}
		}
	}

	result.Percentage = math.Round(float64(result.Score)/float64(MaxScore)*1000) / 10
	result.Eligible = !mandatoryFailed && result.Score >= EligibleThreshold
	result.RecommendationLevel = LevelFor(result.Score)

	return result, nil
}

// proportional scores a match rate against weight, rounding half away from zero
func proportional(rate float64, weight int) int {
	return int(math.Round(rate * float64(weight)))
}
