package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/internal/dedup"
	"github.com/smallfirma/fibua/internal/tax"
	"github.com/smallfirma/fibua/internal/tenancy"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusFinalized Status = "FINALIZED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Invoice is one outgoing invoice. The VAT classification is stamped at
// creation time and frozen with the document; later changes to the client or
// the organization never rewrite an issued invoice.
type Invoice struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`
	tenancy.Owned
	tenancy.SoftDelete

	DocNumber string       `gorm:"column:doc_number;type:text;index" json:"doc_number,omitempty"`
	ClientID  snowflake.ID `gorm:"column:client_id;not null;index" json:"client_id"`

	// ClientName is snapshotted so the document stays readable after the
	// client record changes or is deleted.
	ClientName string `gorm:"type:text;not null" json:"client_name"`

	Status    Status    `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	IssueDate time.Time `gorm:"not null" json:"issue_date"`

	// Amounts in cents.
	NetTotal   int64 `gorm:"not null;default:0" json:"net_total"`
	TaxTotal   int64 `gorm:"not null;default:0" json:"tax_total"`
	GrossTotal int64 `gorm:"not null;default:0" json:"gross_total"`

	TaxCase        tax.Case `gorm:"type:text;not null" json:"tax_case"`
	TaxRatePercent float64  `gorm:"not null;default:0" json:"tax_rate_percent"`
	TaxCode        int      `gorm:"not null" json:"tax_code"`
	TaxAccount     string   `gorm:"type:text;not null" json:"tax_account"`

	IsReverseCharge       bool `gorm:"not null;default:false" json:"is_reverse_charge"`
	IsExport              bool `gorm:"not null;default:false" json:"is_export"`
	IsIntraEUSale         bool `gorm:"not null;default:false" json:"is_intra_eu_sale"`
	IsSmallBusinessExempt bool `gorm:"not null;default:false" json:"is_small_business_exempt"`

	// Buyer facts as classified, kept with the document.
	BuyerCountry string `gorm:"type:text;not null" json:"buyer_country"`
	BuyerUID     string `gorm:"column:buyer_uid;type:text" json:"buyer_uid,omitempty"`

	Items []InvoiceItem `gorm:"-" json:"items,omitempty"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem belongs to the invoice's organization through the invoice; it
// carries no org_id of its own.
type InvoiceItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"column:invoice_id;not null;index" json:"invoice_id"`

	ProductID   *snowflake.ID `gorm:"column:product_id" json:"product_id,omitempty"`
	Description string        `gorm:"type:text;not null" json:"description"`
	Quantity    int64         `gorm:"not null;default:1" json:"quantity"`
	UnitNet     int64         `gorm:"not null" json:"unit_net"`
	LineNet     int64         `gorm:"not null" json:"line_net"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

func (InvoiceItem) OrgParents() []tenancy.ParentRef {
	return []tenancy.ParentRef{{Table: "invoices", ForeignKey: "invoice_id"}}
}

// DeliveryNote accompanies a shipment of goods; numbered from its own range.
type DeliveryNote struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`
	tenancy.Owned
	tenancy.SoftDelete

	DocNumber  string        `gorm:"column:doc_number;type:text;index" json:"doc_number,omitempty"`
	ClientID   snowflake.ID  `gorm:"column:client_id;not null;index" json:"client_id"`
	ClientName string        `gorm:"type:text;not null" json:"client_name"`
	InvoiceID  *snowflake.ID `gorm:"column:invoice_id" json:"invoice_id,omitempty"`

	Status    Status    `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	IssueDate time.Time `gorm:"not null" json:"issue_date"`
	Note      string    `gorm:"type:text" json:"note,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (DeliveryNote) TableName() string { return "delivery_notes" }

// DocumentLog records lifecycle events of a document. It reaches its
// organization through whichever parent link is set.
type DocumentLog struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`

	InvoiceID      *snowflake.ID `gorm:"column:invoice_id;index" json:"invoice_id,omitempty"`
	DeliveryNoteID *snowflake.ID `gorm:"column:delivery_note_id;index" json:"delivery_note_id,omitempty"`

	Event  string `gorm:"type:text;not null" json:"event"`
	Detail string `gorm:"type:text" json:"detail,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (DocumentLog) TableName() string { return "document_logs" }

func (DocumentLog) OrgParents() []tenancy.ParentRef {
	return []tenancy.ParentRef{
		{Table: "invoices", ForeignKey: "invoice_id"},
		{Table: "delivery_notes", ForeignKey: "delivery_note_id"},
	}
}

const (
	EventCreated   = "created"
	EventFinalized = "finalized"
	EventPaid      = "paid"
	EventCancelled = "cancelled"
	EventExported  = "exported"
)

// DedupFields compare invoices by document number first, client name second.
var DedupFields = dedup.Fields[Invoice]{
	"doc_number":  func(i Invoice) string { return i.DocNumber },
	"client_name": func(i Invoice) string { return i.ClientName },
}

// DedupOptions make the number dominate: a matching number is a duplicate
// regardless of how the client name was spelled.
func DedupOptions() dedup.Options {
	return dedup.Options{
		Weights: map[string]float64{
			"doc_number":  10,
			"client_name": 1,
		},
	}
}
