package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/internal/dedup"
	"github.com/smallfirma/fibua/internal/tenancy"
	"gorm.io/datatypes"
)

// Supplier is a vendor of one organization, tracked for incoming invoices.
type Supplier struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`
	tenancy.Owned
	tenancy.SoftDelete

	Name        string `gorm:"not null" json:"name"`
	Email       string `gorm:"type:text" json:"email,omitempty"`
	UID         string `gorm:"column:uid;type:text" json:"uid,omitempty"`
	CountryCode string `gorm:"type:text;not null;default:'AT'" json:"country_code"`
	Address     string `gorm:"type:text" json:"address,omitempty"`
	IBAN        string `gorm:"column:iban;type:text" json:"iban,omitempty"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Supplier) TableName() string { return "suppliers" }

// DedupFields are the comparable fields of a supplier.
var DedupFields = dedup.Fields[Supplier]{
	"name":    func(s Supplier) string { return s.Name },
	"email":   func(s Supplier) string { return s.Email },
	"uid":     func(s Supplier) string { return s.UID },
	"address": func(s Supplier) string { return s.Address },
	"iban":    func(s Supplier) string { return s.IBAN },
}

// DedupOptions weighs UID and IBAN heaviest: either one shared between two
// suppliers identifies the same vendor.
func DedupOptions() dedup.Options {
	return dedup.Options{
		Weights: map[string]float64{
			"name":  2,
			"email": 2,
			"uid":   3,
			"iban":  3,
		},
	}
}
