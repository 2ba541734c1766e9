package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Organization is the tenant root. It carries the seller-side facts the VAT
// engine needs and is itself not subject to org filtering.
type Organization struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"not null" json:"name"`

	CountryCode string `gorm:"type:text;not null;default:'AT'" json:"country_code"`
	UID         string `gorm:"column:uid;type:text" json:"uid,omitempty"`

	// SmallBusiness marks the Kleinunternehmer exemption: every sale of this
	// organization is VAT-exempt while set.
	SmallBusiness bool `gorm:"not null;default:false" json:"small_business"`

	Email    string            `gorm:"type:text" json:"email,omitempty"`
	Address  string            `gorm:"type:text" json:"address,omitempty"`
	Metadata datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Organization) TableName() string { return "organizations" }
