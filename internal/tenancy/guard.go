package tenancy

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/pkg/tenantctx"
)

// Op distinguishes a pending insert from a pending update.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
)

// PendingWrite describes one record about to be committed. The persistence
// boundary collects these and hands them to CheckInvariants as the last step
// before commit, with the final state of every changed record.
type PendingWrite struct {
	// Record is the record being written. Required for creates so the guard
	// can assign the organization; may be nil for column-level updates.
	Record OrgScoped

	Op Op

	// PrevOrg is the persisted organization of the record (updates only).
	PrevOrg snowflake.ID

	// NextOrg is the organization value the write carries. Zero means the
	// write does not touch the organization field.
	NextOrg snowflake.ID

	// SoftDelete is true when this write transitions the record into its
	// soft-deleted state.
	SoftDelete bool
}

// CheckInvariants validates every pending write against the tenant context.
// On success, freshly created records with an unset organization have been
// stamped with the active one. Any error aborts the whole unit of work.
func CheckInvariants(writes []PendingWrite, tc tenantctx.TenantContext) error {
	if tc.Bypass {
		return nil
	}

	for i := range writes {
		w := &writes[i]
		if !tc.HasOrg() {
			return ErrTenantNotSet
		}

		switch w.Op {
		case OpCreate:
			if w.NextOrg == 0 {
				if w.Record != nil {
					w.Record.SetOrgID(tc.OrgID)
				}
				continue
			}
			if w.NextOrg != tc.OrgID {
				return ErrCrossTenantWrite
			}
		case OpUpdate:
			if w.NextOrg == 0 || w.NextOrg == w.PrevOrg {
				continue
			}
			// Soft-delete is the one narrow exception: a cross-org
			// administrative delete may carry the org field along.
			if !w.SoftDelete {
				return ErrTenantReassignmentDenied
			}
		}
	}
	return nil
}
