package tenancy

import (
	"reflect"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/pkg/tenantctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Plugin attaches the isolation engine to a *gorm.DB: the visibility
// predicate is added to every query, update and delete against a registered
// table, and pending writes are checked before they reach the database.
type Plugin struct {
	reg     *Registry
	metrics *Metrics
}

func NewPlugin(reg *Registry, metrics *Metrics) *Plugin {
	return &Plugin{reg: reg, metrics: metrics}
}

func (p *Plugin) Name() string { return "tenancy" }

func (p *Plugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenancy:filter_query", p.applyFilter); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenancy:filter_row", p.applyFilter); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenancy:filter_update", p.applyFilter); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("tenancy:filter_delete", p.applyFilter); err != nil {
		return err
	}
	if err := db.Callback().Create().Before("gorm:create").Register("tenancy:guard_create", p.guardCreate); err != nil {
		return err
	}
	return db.Callback().Update().Before("tenancy:filter_update").Register("tenancy:guard_update", p.guardUpdate)
}

func (p *Plugin) applyFilter(tx *gorm.DB) {
	table := statementTable(tx)
	if table == "" {
		return
	}
	tc := tenantctx.FromContext(tx.Statement.Context)
	pred, ok := p.reg.Filter(table, tc)
	if !ok {
		return
	}
	tx.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{clause.Expr{SQL: pred.SQL, Vars: pred.Vars}},
	})
}

func (p *Plugin) guardCreate(tx *gorm.DB) {
	table := statementTable(tx)
	if table == "" || !p.reg.Registered(table) {
		return
	}

	writes := collectCreates(tx.Statement.ReflectValue)
	if len(writes) == 0 {
		return
	}

	tc := tenantctx.FromContext(tx.Statement.Context)
	if err := CheckInvariants(writes, tc); err != nil {
		p.metrics.violation(err)
		_ = tx.AddError(err)
	}
}

func (p *Plugin) guardUpdate(tx *gorm.DB) {
	table := statementTable(tx)
	if table == "" || !p.reg.Registered(table) {
		return
	}

	tc := tenantctx.FromContext(tx.Statement.Context)

	// The visibility predicate constrains the UPDATE to rows of the active
	// organization, so the persisted org of any affected row is tc.OrgID.
	w := PendingWrite{Op: OpUpdate, PrevOrg: tc.OrgID}
	w.NextOrg, w.SoftDelete = updateAssignments(tx.Statement.Dest)

	if err := CheckInvariants([]PendingWrite{w}, tc); err != nil {
		p.metrics.violation(err)
		_ = tx.AddError(err)
	}
}

// collectCreates walks the create destination, which may be a single record
// or a batch.
func collectCreates(rv reflect.Value) []PendingWrite {
	var writes []PendingWrite
	appendRecord := func(v reflect.Value) {
		rec, ok := scopedRecord(v)
		if !ok {
			return
		}
		writes = append(writes, PendingWrite{
			Record:  rec,
			Op:      OpCreate,
			NextOrg: rec.GetOrgID(),
		})
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			appendRecord(rv.Index(i))
		}
	default:
		appendRecord(rv)
	}
	return writes
}

func scopedRecord(v reflect.Value) (OrgScoped, bool) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct || !v.CanAddr() {
		return nil, false
	}
	rec, ok := v.Addr().Interface().(OrgScoped)
	return rec, ok
}

// updateAssignments extracts the org value and soft-delete transition an
// update destination carries, for both map-style and struct-style updates.
func updateAssignments(dest any) (nextOrg snowflake.ID, softDelete bool) {
	switch d := dest.(type) {
	case map[string]any:
		if raw, ok := d["org_id"]; ok {
			switch v := raw.(type) {
			case snowflake.ID:
				nextOrg = v
			case int64:
				nextOrg = snowflake.ID(v)
			}
		}
		if raw, ok := d["deleted"]; ok {
			if v, ok := raw.(bool); ok {
				softDelete = v
			}
		}
	default:
		if rec, ok := dest.(OrgScoped); ok {
			nextOrg = rec.GetOrgID()
		}
		if sd, ok := dest.(SoftDeletable); ok {
			softDelete = sd.IsDeleted()
		}
	}
	return nextOrg, softDelete
}

func statementTable(tx *gorm.DB) string {
	stmt := tx.Statement
	if stmt == nil {
		return ""
	}
	if stmt.Table != "" {
		return stmt.Table
	}
	if stmt.Schema == nil && stmt.Model != nil {
		_ = stmt.Parse(stmt.Model)
	}
	if stmt.Schema != nil {
		return stmt.Schema.Table
	}
	return ""
}
