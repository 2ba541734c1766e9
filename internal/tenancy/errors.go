package tenancy

import "errors"

// Isolation violations are fatal for the unit of work. They are distinct
// sentinel values so callers can present precise diagnostics.
var (
	// ErrTenantNotSet: a write was attempted with neither an active
	// organization nor bypass. Configuration error in the calling scope.
	ErrTenantNotSet = errors.New("tenant_not_set")

	// ErrCrossTenantWrite: a record was created carrying a different
	// organization than the active one.
	ErrCrossTenantWrite = errors.New("cross_tenant_write")

	// ErrTenantReassignmentDenied: an existing record's organization field
	// was changed outside a soft-delete transition.
	ErrTenantReassignmentDenied = errors.New("tenant_reassignment_denied")
)
