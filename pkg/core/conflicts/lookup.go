package conflicts

import "context"

// ComplianceLookup answers client and site compliance questions the rules engine cannot
// derive from the shift and guard snapshots.
type ComplianceLookup interface {
	// IsClientRestricted reports whether the client has barred the guard from its sites
	IsClientRestricted(ctx context.Context, clientID, guardID string) (bool, error)

	// IsSiteBlacklisted reports whether the guard is blacklisted at the site
	IsSiteBlacklisted(ctx context.Context, siteID, guardID string) (bool, error)

	// HasSiteInduction reports whether the guard has completed the site's induction
	HasSiteInduction(ctx context.Context, siteID, guardID string) (bool, error)
}

// NoopLookup reports no restrictions and assumes every induction is complete
type NoopLookup struct{}

func (NoopLookup) IsClientRestricted(ctx context.Context, clientID, guardID string) (bool, error) {
	return false, nil
}

func (NoopLookup) IsSiteBlacklisted(ctx context.Context, siteID, guardID string) (bool, error) {
	return false, nil
}

func (NoopLookup) HasSiteInduction(ctx context.Context, siteID, guardID string) (bool, error) {
	return true, nil
}
