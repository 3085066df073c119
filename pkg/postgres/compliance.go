package postgres

import (
	"context"
	"fmt"
)

// IsClientRestricted reports whether the client has barred the guard
func (d *DB) IsClientRestricted(ctx context.Context, clientID, guardID string) (bool, error) {
	return d.exists(ctx, "client restriction", `
		SELECT EXISTS (SELECT 1 FROM client_restrictions WHERE client_id = $1 AND guard_id = $2)
	`, clientID, guardID)
}

// IsSiteBlacklisted reports whether the guard is blacklisted at the site
func (d *DB) IsSiteBlacklisted(ctx context.Context, siteID, guardID string) (bool, error) {
	return d.exists(ctx, "site blacklist", `
		SELECT EXISTS (SELECT 1 FROM site_blacklist WHERE site_id = $1 AND guard_id = $2)
	`, siteID, guardID)
}

// HasSiteInduction reports whether the guard has a recorded induction at the site
func (d *DB) HasSiteInduction(ctx context.Context, siteID, guardID string) (bool, error) {
	return d.exists(ctx, "site induction", `
		SELECT EXISTS (SELECT 1 FROM site_inductions WHERE site_id = $1 AND guard_id = $2)
	`, siteID, guardID)
}

func (d *DB) exists(ctx context.Context, what, query string, args ...any) (bool, error) {
	var found bool
	if err := d.pool.QueryRow(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to query %s: %w", what, err)
	}
	return found, nil
}
