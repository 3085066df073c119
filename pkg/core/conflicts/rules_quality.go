package conflicts

import (
	"context"
	"fmt"
	"strings"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

// ShiftPreferenceRule recommends against shift types the guard has not listed as preferred.
// Guards with no stated preference accept any type.
type ShiftPreferenceRule struct{}

func (r *ShiftPreferenceRule) Name() string     { return "ShiftPreference" }
func (r *ShiftPreferenceRule) Group() RuleGroup { return GroupQuality }

func (r *ShiftPreferenceRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	if len(input.Guard.PreferredShiftTypes) == 0 {
		return nil, nil
	}

	shiftType, err := timeutil.ClassifyShift(input.Shift)
	if err != nil {
		return nil, err
	}
	if input.Guard.PrefersShiftType(shiftType) {
		return nil, nil
	}

	return []Finding{{Conflict: Conflict{
		Type:     TypePreferenceMismatch,
		Severity: SeverityRecommendation,
		Message:  fmt.Sprintf("%s prefers %s shifts, this is a %s shift", guardLabel(input.Guard), joinTypes(input.Guard.PreferredShiftTypes), shiftType),
		Details:  map[string]any{"shiftType": string(shiftType)},
	}}}, nil
}

// SkillGapRule warns when the guard lacks any of the shift's required skills
type SkillGapRule struct{}

func (r *SkillGapRule) Name() string     { return "SkillGap" }
func (r *SkillGapRule) Group() RuleGroup { return GroupQuality }

func (r *SkillGapRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	var missing []string
	for _, skill := range input.Shift.RequiredSkills {
		if !input.Guard.HasSkill(skill) {
			missing = append(missing, skill)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	return []Finding{{Conflict: Conflict{
		Type:     TypeSkillGap,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("Missing required skills: %s", strings.Join(missing, ", ")),
		Details:  map[string]any{"missingSkills": missing},
	}}}, nil
}

// LanguageRule notes required languages the guard does not speak
type LanguageRule struct{}

func (r *LanguageRule) Name() string     { return "Language" }
func (r *LanguageRule) Group() RuleGroup { return GroupQuality }

func (r *LanguageRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	var missing []string
	for _, language := range input.Shift.RequiredLanguages {
		if !input.Guard.SpeaksLanguage(language) {
			missing = append(missing, language)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	return []Finding{{Conflict: Conflict{
		Type:     TypeLanguageGap,
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("Language requirement not met: %s", strings.Join(missing, ", ")),
		Details:  map[string]any{"missingLanguages": missing},
	}}}, nil
}

// TransportRiskRule notes night shifts the guard may struggle to travel to:
// no vehicle, and the site has no 24 hour public transport.
type TransportRiskRule struct{}

func (r *TransportRiskRule) Name() string     { return "TransportRisk" }
func (r *TransportRiskRule) Group() RuleGroup { return GroupQuality }

func (r *TransportRiskRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	if input.Guard.HasVehicle || input.Shift.PublicTransport24h {
		return nil, nil
	}
	if !input.timeline.candidate.night {
		return nil, nil
	}

	return []Finding{{Conflict: Conflict{
		Type:     TypeTransportRisk,
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("%s has no vehicle and %s has no 24 hour public transport", guardLabel(input.Guard), siteLabel(input.Shift)),
	}}}, nil
}

func joinTypes(types []model.ShiftType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, "/")
}
