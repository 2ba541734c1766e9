// Package export renders finalized invoices into the semicolon-separated
// posting format Austrian bookkeeping software imports.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	invoicedomain "github.com/smallfirma/fibua/internal/invoice/domain"
	"github.com/smallfirma/fibua/internal/tenancy"
	"github.com/smallfirma/fibua/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNothingToExport = errors.New("nothing_to_export")

type Request struct {
	From time.Time `form:"from"`
	To   time.Time `form:"to"`

	// IncludePaid widens the selection beyond FINALIZED.
	IncludePaid bool `form:"include_paid"`
}

// Batch is one export run. The CSV is returned to the caller; only the run
// itself is recorded on the exported documents.
type Batch struct {
	ID        string    `json:"id"`
	Count     int       `json:"count"`
	CSV       []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

var header = []string{
	"belegnr", "belegdatum", "kunde", "konto",
	"steuercode", "prozent", "netto", "steuer", "brutto", "steuerfall",
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func New(p Params) *Service {
	return &Service{db: p.DB, log: p.Log.Named("export.service"), genID: p.GenID}
}

// Run collects the tenant's finalized invoices in the window and renders one
// posting line per invoice. Each exported invoice gets a log entry carrying
// the batch id.
func (s *Service) Run(ctx context.Context, req Request) (Batch, error) {
	if _, ok := tenantctx.OrgID(ctx); !ok {
		return Batch{}, tenancy.ErrTenantNotSet
	}

	statuses := []invoicedomain.Status{invoicedomain.StatusFinalized}
	if req.IncludePaid {
		statuses = append(statuses, invoicedomain.StatusPaid)
	}

	var invoices []invoicedomain.Invoice
	stmt := s.db.WithContext(ctx).
		Where("deleted = ?", false).
		Where("status IN ?", statuses)
	if !req.From.IsZero() {
		stmt = stmt.Where("issue_date >= ?", req.From)
	}
	if !req.To.IsZero() {
		stmt = stmt.Where("issue_date < ?", req.To)
	}
	if err := stmt.Order("doc_number asc").Find(&invoices).Error; err != nil {
		return Batch{}, err
	}
	if len(invoices) == 0 {
		return Batch{}, ErrNothingToExport
	}

	batchID := uuid.NewString()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write(header); err != nil {
		return Batch{}, err
	}
	for _, inv := range invoices {
		if err := w.Write(line(inv)); err != nil {
			return Batch{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Batch{}, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, inv := range invoices {
			id := inv.ID
			log := invoicedomain.DocumentLog{
				ID:        s.genID.Generate(),
				InvoiceID: &id,
				Event:     invoicedomain.EventExported,
				Detail:    batchID,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.WithContext(ctx).Create(&log).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Batch{}, err
	}

	s.log.Info("export batch written",
		zap.String("batch_id", batchID),
		zap.Int("invoices", len(invoices)),
	)

	return Batch{
		ID:        batchID,
		Count:     len(invoices),
		CSV:       buf.Bytes(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func line(inv invoicedomain.Invoice) []string {
	return []string{
		inv.DocNumber,
		inv.IssueDate.Format("02.01.2006"),
		inv.ClientName,
		inv.TaxAccount,
		strconv.Itoa(inv.TaxCode),
		percent(inv.TaxRatePercent),
		cents(inv.NetTotal),
		cents(inv.TaxTotal),
		cents(inv.GrossTotal),
		string(inv.TaxCase),
	}
}

// cents renders an amount in cents with a decimal comma, as the import
// format expects.
func cents(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d,%02d", sign, v/100, v%100)
}

func percent(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	return strings.ReplaceAll(s, ".", ",")
}
