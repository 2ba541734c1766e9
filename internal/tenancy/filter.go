package tenancy

import (
	"fmt"
	"strings"

	"github.com/smallfirma/fibua/pkg/tenantctx"
)

// Predicate is the SQL condition rows of a table must satisfy to be visible
// under a tenant context. The persistence layer decides how to attach it.
type Predicate struct {
	SQL  string
	Vars []any
}

// noneVisible excludes every row: no organization has been determined and
// bypass is off, so nothing may be read.
var noneVisible = Predicate{SQL: "1 = 0"}

// Filter builds the visibility predicate for a registered table. The second
// return is false when no predicate applies: the table is not registered, or
// the context bypasses isolation.
func (r *Registry) Filter(table string, tc tenantctx.TenantContext) (Predicate, bool) {
	e, ok := r.lookup(table)
	if !ok || tc.Bypass {
		return Predicate{}, false
	}
	if !tc.HasOrg() {
		return noneVisible, true
	}

	if e.scoped {
		return Predicate{
			SQL:  fmt.Sprintf("%s.org_id = ?", table),
			Vars: []any{tc.OrgID},
		}, true
	}

	// Derived: OR across the parent links that are present. A null foreign key
	// produces no EXISTS match, so an entirely-null-parent row stays hidden.
	exprs := make([]string, 0, len(e.parents))
	vars := make([]any, 0, len(e.parents))
	for _, p := range e.parents {
		exprs = append(exprs, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s WHERE %s.id = %s.%s AND %s.org_id = ?)",
			p.Table, p.Table, table, p.ForeignKey, p.Table,
		))
		vars = append(vars, tc.OrgID)
	}
	return Predicate{SQL: "(" + strings.Join(exprs, " OR ") + ")", Vars: vars}, true
}
