package conflicts

import (
	"context"
	"fmt"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

// ClientRestrictionRule blocks guards the client has barred from its sites
type ClientRestrictionRule struct{}

func (r *ClientRestrictionRule) Name() string     { return "ClientRestriction" }
func (r *ClientRestrictionRule) Group() RuleGroup { return GroupClient }

func (r *ClientRestrictionRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	if input.Shift.ClientID == "" {
		return nil, nil
	}

	restricted, err := input.lookup.IsClientRestricted(ctx, input.Shift.ClientID, input.Guard.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check client restriction: %w", err)
	}
	if !restricted {
		return nil, nil
	}

	return []Finding{{Conflict: Conflict{
		Type:     TypeClientRestriction,
		Severity: SeverityBlocking,
		Message:  fmt.Sprintf("%s is restricted by client %s", guardLabel(input.Guard), input.Shift.ClientID),
		Details:  map[string]any{"clientId": input.Shift.ClientID},
	}}}, nil
}

// SiteBlacklistRule blocks guards blacklisted at the shift's site
type SiteBlacklistRule struct{}

func (r *SiteBlacklistRule) Name() string     { return "SiteBlacklist" }
func (r *SiteBlacklistRule) Group() RuleGroup { return GroupClient }

func (r *SiteBlacklistRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	if input.Shift.SiteID == "" {
		return nil, nil
	}

	blacklisted, err := input.lookup.IsSiteBlacklisted(ctx, input.Shift.SiteID, input.Guard.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check site blacklist: %w", err)
	}
	if !blacklisted {
		return nil, nil
	}

	return []Finding{{Conflict: Conflict{
		Type:     TypeSiteBlacklisted,
		Severity: SeverityBlocking,
		Message:  fmt.Sprintf("%s is blacklisted at %s", guardLabel(input.Guard), siteLabel(input.Shift)),
		Details:  map[string]any{"siteId": input.Shift.SiteID},
	}}}, nil
}

// PairingRule warns when a shift that requires pairing has no other guard working the
// same site at an overlapping time.
type PairingRule struct{}

func (r *PairingRule) Name() string     { return "Pairing" }
func (r *PairingRule) Group() RuleGroup { return GroupClient }

func (r *PairingRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	if !input.Shift.RequiresPairing {
		return nil, nil
	}

	partners, err := overlappingGuardsAtSite(input)
	if err != nil {
		return nil, err
	}
	if partners > 0 {
		return nil, nil
	}

	return []Finding{{Conflict: Conflict{
		Type:     TypePairingRequired,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("Shift at %s requires pairing but no other guard is scheduled", siteLabel(input.Shift)),
	}}}, nil
}

// SiteCapacityRule blocks assignments once the site already has its maximum number of
// guards on at an overlapping time. The limit is the shift's MaxGuards, or
// DefaultSiteCapacity when unset.
type SiteCapacityRule struct{}

func (r *SiteCapacityRule) Name() string     { return "SiteCapacity" }
func (r *SiteCapacityRule) Group() RuleGroup { return GroupClient }

func (r *SiteCapacityRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	if input.Shift.SiteID == "" {
		return nil, nil
	}

	capacity := input.Shift.MaxGuards
	if capacity <= 0 {
		capacity = input.rules.DefaultSiteCapacity
	}

	onSite, err := overlappingGuardsAtSite(input)
	if err != nil {
		return nil, err
	}
	if onSite < capacity {
		return nil, nil
	}

	return []Finding{{Conflict: Conflict{
		Type:     TypeSiteCapacity,
		Severity: SeverityBlocking,
		Message:  fmt.Sprintf("%s already has %d guards scheduled (capacity %d)", siteLabel(input.Shift), onSite, capacity),
		Details:  map[string]any{"guardsOnSite": onSite, "capacity": capacity},
	}}}, nil
}

// overlappingGuardsAtSite counts distinct other guards assigned to active shifts at the
// candidate's site whose intervals overlap the candidate
func overlappingGuardsAtSite(input *EvaluationInput) (int, error) {
	candidate := input.timeline.candidate
	guards := make(map[string]bool)

	for _, other := range input.AllShifts {
		if other.SiteID != input.Shift.SiteID || !other.IsAssigned() || other.IsInactive() {
			continue
		}
		if other.GuardID == input.Guard.ID {
			continue
		}
		if input.Shift.ID != "" && other.ID == input.Shift.ID {
			continue
		}
		if !activeOnSite(other) {
			continue
		}

		interval, err := timeutil.ShiftInterval(other)
		if err != nil {
			return 0, err
		}
		if interval.Overlaps(candidate.interval) {
			guards[other.GuardID] = true
		}
	}

	return len(guards), nil
}

func activeOnSite(shift model.Shift) bool {
	switch shift.Status {
	case model.StatusNoShow, model.StatusArchived:
		return false
	default:
		return true
	}
}
