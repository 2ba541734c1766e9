// Package tenantctx carries the active tenant of a unit of work through
// context.Context. One TenantContext per request/session/task; never shared
// across concurrent units of work and never persisted.
package tenantctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type orgKey struct{}
type bypassKey struct{}

// TenantContext is the pair of values every isolation decision depends on.
type TenantContext struct {
	OrgID  snowflake.ID
	Bypass bool
}

// HasOrg reports whether an organization has been determined for this scope.
func (tc TenantContext) HasOrg() bool { return tc.OrgID != 0 }

// WithOrg stores the active organization ID in the context.
func WithOrg(ctx context.Context, orgID snowflake.ID) context.Context {
	return context.WithValue(ctx, orgKey{}, orgID)
}

// WithBypass marks the context as exempt from tenant isolation. Reserved for
// system maintenance and seeding paths, never for request handling.
func WithBypass(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassKey{}, true)
}

// FromContext extracts the tenant context. A context with neither value set
// yields the zero TenantContext: no org, no bypass.
func FromContext(ctx context.Context) TenantContext {
	if ctx == nil {
		return TenantContext{}
	}
	tc := TenantContext{}
	if v, ok := ctx.Value(orgKey{}).(snowflake.ID); ok {
		tc.OrgID = v
	}
	if v, ok := ctx.Value(bypassKey{}).(bool); ok {
		tc.Bypass = v
	}
	return tc
}

// OrgID returns the active organization ID, if one is set.
func OrgID(ctx context.Context) (snowflake.ID, bool) {
	tc := FromContext(ctx)
	return tc.OrgID, tc.OrgID != 0
}

// ParseOrgID parses an organization ID from its string form (request headers).
func ParseOrgID(raw string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
