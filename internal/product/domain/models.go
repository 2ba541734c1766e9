package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/internal/dedup"
	"github.com/smallfirma/fibua/internal/tenancy"
	"gorm.io/datatypes"
)

// Product is a sellable good or service of one organization. Prices are net
// cents; the VAT treatment is decided per invoice, only the reduced-rate
// eligibility is a property of the product.
type Product struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`
	tenancy.Owned
	tenancy.SoftDelete

	Name        string `gorm:"not null" json:"name"`
	SKU         string `gorm:"column:sku;type:text" json:"sku,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	UnitNet     int64  `gorm:"not null;default:0" json:"unit_net"`
	IsService   bool   `gorm:"not null;default:false" json:"is_service"`
	ReducedRate bool   `gorm:"not null;default:false" json:"reduced_rate"`

	Metadata datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// DedupFields are the comparable fields of a product.
var DedupFields = dedup.Fields[Product]{
	"name": func(p Product) string { return p.Name },
	"sku":  func(p Product) string { return p.SKU },
}

// DedupOptions weighs the SKU heaviest: a shared article number means the
// same product regardless of naming.
func DedupOptions() dedup.Options {
	return dedup.Options{
		Weights: map[string]float64{
			"name": 2,
			"sku":  3,
		},
	}
}
