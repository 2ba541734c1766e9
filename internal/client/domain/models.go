package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/internal/dedup"
	"github.com/smallfirma/fibua/internal/tenancy"
	"gorm.io/datatypes"
)

// Client is a customer of one organization.
type Client struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`
	tenancy.Owned
	tenancy.SoftDelete

	Name        string `gorm:"not null" json:"name"`
	Email       string `gorm:"type:text" json:"email,omitempty"`
	UID         string `gorm:"column:uid;type:text" json:"uid,omitempty"`
	CountryCode string `gorm:"type:text;not null;default:'AT'" json:"country_code"`
	Address     string `gorm:"type:text" json:"address,omitempty"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

// DedupFields are the comparable fields of a client.
var DedupFields = dedup.Fields[Client]{
	"name":    func(c Client) string { return c.Name },
	"email":   func(c Client) string { return c.Email },
	"uid":     func(c Client) string { return c.UID },
	"address": func(c Client) string { return c.Address },
}

// DedupOptions weighs the tax identifier heaviest: two clients sharing a UID
// are almost certainly the same business.
func DedupOptions() dedup.Options {
	return dedup.Options{
		Weights: map[string]float64{
			"name":  2,
			"email": 2,
			"uid":   3,
		},
	}
}
