package conflicts

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// RuleGroup is a family of rules that can be switched on or off together
type RuleGroup string

const (
	GroupFatigue    RuleGroup = "fatigue"
	GroupClient     RuleGroup = "client"
	GroupRegulatory RuleGroup = "regulatory"
	GroupQuality    RuleGroup = "quality"
)

// Finding is a conflict raised by a rule, plus its contribution to the fatigue score
type Finding struct {
	Conflict
	FatiguePoints int
}

// EvaluationInput is the snapshot a rule evaluates.
// timeline is resolved once by the engine and shared by every rule.
type EvaluationInput struct {
	Shift         model.Shift
	Guard         model.Guard
	AllShifts     []model.Shift
	GuardSchedule []model.Shift
	Now           time.Time

	rules    Rules
	lookup   ComplianceLookup
	timeline *timeline
}

// Rule defines the interface for advanced conflict rules
type Rule interface {
	// Name returns a human-readable identifier for this rule
	Name() string

	// Group returns the rule group this rule belongs to
	Group() RuleGroup

	// Evaluate returns the findings for the input (empty if the rule is satisfied).
	// Errors are reserved for malformed input or failed external lookups.
	Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error)
}

// Options toggles rule groups and strict mode
type Options struct {
	Fatigue     bool
	ClientRules bool
	Regulatory  bool
	Quality     bool

	// StrictMode makes critical findings invalidate the assignment
	StrictMode bool
}

// DefaultOptions enables every rule group without strict mode
func DefaultOptions() Options {
	return Options{
		Fatigue:     true,
		ClientRules: true,
		Regulatory:  true,
		Quality:     true,
	}
}

func (o Options) enabled(group RuleGroup) bool {
	switch group {
	case GroupFatigue:
		return o.Fatigue
	case GroupClient:
		return o.ClientRules
	case GroupRegulatory:
		return o.Regulatory
	case GroupQuality:
		return o.Quality
	default:
		return false
	}
}

// Buckets groups conflicts by severity
type Buckets struct {
	Blocking        []Conflict
	Critical        []Conflict
	Warnings        []Conflict
	Info            []Conflict
	Recommendations []Conflict
}

func (b *Buckets) add(c Conflict) {
	switch c.Severity {
	case SeverityBlocking:
		b.Blocking = append(b.Blocking, c)
	case SeverityCritical:
		b.Critical = append(b.Critical, c)
	case SeverityWarning:
		b.Warnings = append(b.Warnings, c)
	case SeverityInfo:
		b.Info = append(b.Info, c)
	default:
		b.Recommendations = append(b.Recommendations, c)
	}
}

// Summary counts conflicts per bucket
type Summary struct {
	Blocking        int
	Critical        int
	Warnings        int
	Info            int
	Recommendations int
	Total           int
}

// AdvancedReport is the result of the advanced rules engine
type AdvancedReport struct {
	Valid     bool
	Conflicts Buckets

	// FatigueScore is additive and deliberately unclamped; it can exceed 100
	FatigueScore int
	FatigueRisk  FatigueRisk
	Summary      Summary
}

// Engine evaluates layered conflict rules for a candidate assignment
type Engine struct {
	lookup  ComplianceLookup
	rules   Rules
	ruleSet []Rule
}

// NewEngine creates an Engine with the built-in rule set.
// A nil lookup is replaced with NoopLookup.
func NewEngine(lookup ComplianceLookup, rules Rules) *Engine {
	return NewEngineWithRules(lookup, rules, DefaultRuleSet()...)
}

// NewEngineWithRules creates an Engine that evaluates only the given rules
func NewEngineWithRules(lookup ComplianceLookup, rules Rules, ruleSet ...Rule) *Engine {
	if lookup == nil {
		lookup = NoopLookup{}
	}
	return &Engine{
		lookup:  lookup,
		rules:   rules,
		ruleSet: ruleSet,
	}
}

// DefaultRuleSet returns every built-in rule, grouped fatigue, client, regulatory, quality
func DefaultRuleSet() []Rule {
	return []Rule{
		&ConsecutiveDaysRule{},
		&WeeklyRestRule{},
		&NightShiftRule{},
		&ShiftRotationRule{},

		&ClientRestrictionRule{},
		&SiteBlacklistRule{},
		&PairingRule{},
		&SiteCapacityRule{},

		&MinorNightWorkRule{},
		&AnnualHoursRule{},
		&SiteInductionRule{},
		&CertificationExpiryRule{},

		&ShiftPreferenceRule{},
		&SkillGapRule{},
		&LanguageRule{},
		&TransportRiskRule{},
	}
}

// Evaluate runs the base detector followed by every enabled rule group.
//
// Base detector findings are mapped into the same buckets as rule findings.
// The assignment is valid when there are no blocking findings, and in strict mode
// no critical findings either.
func (e *Engine) Evaluate(ctx context.Context, input EvaluationInput, options Options) (*AdvancedReport, error) {
	base, err := ValidateShift(input.Shift, input.Guard, input.AllShifts, input.GuardSchedule, input.Now, e.rules)
	if err != nil {
		return nil, err
	}

	tl, err := buildTimeline(input.Shift, input.GuardSchedule)
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule: %w", err)
	}
	input.rules = e.rules
	input.lookup = e.lookup
	input.timeline = tl

	report := &AdvancedReport{}
	for _, c := range base.Conflicts {
		report.Conflicts.add(c)
	}
	for _, c := range base.Warnings {
		report.Conflicts.add(c)
	}

	for _, rule := range e.ruleSet {
		if !options.enabled(rule.Group()) {
			continue
		}

		findings, err := rule.Evaluate(ctx, &input)
		if err != nil {
			return nil, fmt.Errorf("rule %s failed: %w", rule.Name(), err)
		}

		for _, f := range findings {
			report.Conflicts.add(f.Conflict)
			report.FatigueScore += f.FatiguePoints
		}
	}

	report.FatigueRisk = CalculateFatigueRisk(report.FatigueScore)
	if report.FatigueRisk == FatigueRiskHigh || report.FatigueRisk == FatigueRiskSevere {
		report.Conflicts.add(Conflict{
			Type:     TypeFatigueRecommendation,
			Severity: SeverityRecommendation,
			Message:  fmt.Sprintf("Fatigue risk is %s (score %d); consider assigning a less loaded guard", report.FatigueRisk, report.FatigueScore),
			Details:  map[string]any{"fatigueScore": report.FatigueScore},
		})
	}

	report.Summary = Summary{
		Blocking:        len(report.Conflicts.Blocking),
		Critical:        len(report.Conflicts.Critical),
		Warnings:        len(report.Conflicts.Warnings),
		Info:            len(report.Conflicts.Info),
		Recommendations: len(report.Conflicts.Recommendations),
	}
	report.Summary.Total = report.Summary.Blocking + report.Summary.Critical + report.Summary.Warnings +
		report.Summary.Info + report.Summary.Recommendations

	report.Valid = report.Summary.Blocking == 0 && (!options.StrictMode || report.Summary.Critical == 0)

	return report, nil
}

// FatigueRisk is a four-tier reading of the fatigue score
type FatigueRisk string

const (
	FatigueRiskLow      FatigueRisk = "low"
	FatigueRiskModerate FatigueRisk = "moderate"
	FatigueRiskHigh     FatigueRisk = "high"
	FatigueRiskSevere   FatigueRisk = "severe"
)

// CalculateFatigueRisk maps a fatigue score onto a risk tier:
// below 31 low, 31-60 moderate, 61-80 high, 81 and above severe
func CalculateFatigueRisk(score int) FatigueRisk {
	switch {
	case score >= 81:
		return FatigueRiskSevere
	case score >= 61:
		return FatigueRiskHigh
	case score >= 31:
		return FatigueRiskModerate
	default:
		return FatigueRiskLow
	}
}
