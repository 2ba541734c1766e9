// Package docnumber issues per-organization, per-year document numbers from
// a persistent counter.
package docnumber

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/internal/tenancy"
	"github.com/smallfirma/fibua/pkg/tenantctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	KindInvoice      = "invoice"
	KindDeliveryNote = "delivery_note"
)

var defaultFormats = map[string]string{
	KindInvoice:      "R-%d-%04d",
	KindDeliveryNote: "L-%d-%04d",
}

var ErrUnknownKind = errors.New("unknown_sequence_kind")

// Sequence is the counter row behind one document number range.
type Sequence struct {
	ID snowflake.ID `gorm:"primaryKey"`
	tenancy.Owned

	Kind    string `gorm:"type:text;not null;index:ix_sequences_kind_year"`
	Year    int    `gorm:"not null;index:ix_sequences_kind_year"`
	Counter int64  `gorm:"not null;default:0"`
	Format  string `gorm:"type:text;not null"`
}

func (Sequence) TableName() string { return "number_sequences" }

// Service hands out the next formatted document number. Runs inside the
// caller's transaction so a rolled-back document does not burn a number
// silently mid-flight.
type Service struct {
	genID *snowflake.Node
}

func New(genID *snowflake.Node) *Service {
	return &Service{genID: genID}
}

// Next increments the counter for (org, kind, year) and returns the
// formatted number. The row is locked for the duration of tx.
func (s *Service) Next(ctx context.Context, tx *gorm.DB, kind string, year int) (string, error) {
	format, ok := defaultFormats[kind]
	if !ok {
		return "", ErrUnknownKind
	}

	var seq Sequence
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ? AND year = ?", kind, year).
		First(&seq).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		orgID, _ := tenantctx.OrgID(ctx)
		seq = Sequence{
			ID:     s.genID.Generate(),
			Owned:  tenancy.Owned{OrgID: orgID},
			Kind:   kind,
			Year:   year,
			Format: format,
		}
		if err := tx.WithContext(ctx).Create(&seq).Error; err != nil {
			return "", err
		}
	}

	seq.Counter++
	err = tx.WithContext(ctx).
		Model(&Sequence{}).
		Where("id = ?", seq.ID).
		Update("counter", seq.Counter).Error
	if err != nil {
		return "", err
	}

	if seq.Format == "" {
		seq.Format = format
	}
	return fmt.Sprintf(seq.Format, year, seq.Counter), nil
}
