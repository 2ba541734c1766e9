// Package tenancy enforces organization-level isolation for every persisted
// record that declares the capability. Read queries are narrowed to the active
// organization, writes are checked against it before commit.
package tenancy

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// OrgScoped is implemented by records that carry their own organization ID.
// Embedding Owned is the usual way to satisfy it.
type OrgScoped interface {
	GetOrgID() snowflake.ID
	SetOrgID(snowflake.ID)
}

// OrgDerived is implemented by records with no organization ID of their own
// that belong to a tenant through one or more parent references. A record with
// several optional parents reaches its organization through whichever links
// are non-null; a record with no live parent link is visible to no one.
type OrgDerived interface {
	OrgParents() []ParentRef
}

// ParentRef names one parent link of a derived record: the parent table and
// the foreign-key column on the dependent row. Only one hop is supported; the
// parent itself must be OrgScoped.
type ParentRef struct {
	Table      string
	ForeignKey string
}

// Owned is embedded by tenant-scoped models to declare the capability.
type Owned struct {
	OrgID snowflake.ID `gorm:"column:org_id;not null;index" json:"organization_id"`
}

func (o *Owned) GetOrgID() snowflake.ID   { return o.OrgID }
func (o *Owned) SetOrgID(id snowflake.ID) { o.OrgID = id }

// SoftDeletable is implemented by records supporting the soft-delete
// transition, the sole permitted exception to org-ID immutability.
type SoftDeletable interface {
	IsDeleted() bool
}

// SoftDelete is embedded by models that support soft deletion.
type SoftDelete struct {
	Deleted bool `gorm:"column:deleted;not null;default:false" json:"deleted"`
}

func (s *SoftDelete) IsDeleted() bool { return s.Deleted }

type tabler interface {
	TableName() string
}

type entry struct {
	scoped  bool
	parents []ParentRef
}

// Registry holds one entry per isolated record type. It is built once at
// startup and read-only afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]entry{}}
}

// Register declares models as isolation-aware. Each model must name its table
// and implement OrgScoped or OrgDerived; anything else is a wiring mistake.
func (r *Registry) Register(models ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, model := range models {
		t, ok := model.(tabler)
		if !ok {
			return fmt.Errorf("tenancy: model %T does not name its table", model)
		}
		table := t.TableName()

		switch m := model.(type) {
		case OrgScoped:
			r.entries[table] = entry{scoped: true}
		case OrgDerived:
			parents := m.OrgParents()
			if len(parents) == 0 {
				return fmt.Errorf("tenancy: derived model %T declares no parent reference", model)
			}
			r.entries[table] = entry{parents: parents}
		default:
			return fmt.Errorf("tenancy: model %T is neither org-scoped nor org-derived", model)
		}
	}
	return nil
}

// Registered reports whether a table participates in isolation.
func (r *Registry) Registered(table string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[table]
	return ok
}

func (r *Registry) lookup(table string) (entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[table]
	return e, ok
}
