package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallfirma/fibua/internal/dedup"
	"github.com/smallfirma/fibua/internal/tax"
	"github.com/smallfirma/fibua/pkg/db/pagination"
)

type ItemInput struct {
	ProductID   string `json:"product_id"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitNet     int64  `json:"unit_net"`
}

type CreateInvoiceRequest struct {
	ClientID string      `json:"client_id"`
	Items    []ItemInput `json:"items"`

	// DocNumber is normally left empty and assigned from the organization's
	// number range at finalization. A manually entered number is checked
	// against existing invoices for duplicates.
	DocNumber string `json:"doc_number"`

	IssueDate time.Time `json:"issue_date"`

	// BuyerUID overrides the UID stored on the client for this invoice.
	BuyerUID string `json:"buyer_uid"`

	GoodsSupply bool `json:"goods_supply"`
	ReducedRate bool `json:"reduced_rate"`

	// Triangular marks a chain transaction; the special scheme is chosen by
	// the user, never inferred.
	Triangular bool `json:"triangular"`

	ConfirmDuplicate bool `json:"confirm_duplicate"`
}

type CreateInvoiceResponse struct {
	Invoice    Invoice                `json:"invoice"`
	Duplicates *dedup.Result[Invoice] `json:"duplicates,omitempty"`
}

type ListInvoiceRequest struct {
	PageToken string
	PageSize  int
	Status    Status
	ClientID  string
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type GetInvoiceRequest struct {
	ID string
}

type CreateDeliveryNoteRequest struct {
	InvoiceID string `json:"invoice_id"`
	Note      string `json:"note"`
}

type PreviewTaxRequest struct {
	ClientID    string `json:"client_id"`
	BuyerUID    string `json:"buyer_uid"`
	GoodsSupply bool   `json:"goods_supply"`
	ReducedRate bool   `json:"reduced_rate"`
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (CreateInvoiceResponse, error)
	GetByID(context.Context, GetInvoiceRequest) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	Finalize(context.Context, GetInvoiceRequest) (Invoice, error)
	MarkPaid(context.Context, GetInvoiceRequest) (Invoice, error)
	Cancel(context.Context, GetInvoiceRequest) (Invoice, error)
	Delete(context.Context, GetInvoiceRequest) error

	// CreateDeliveryNote issues a delivery note for an invoice, numbered
	// immediately from the delivery note range.
	CreateDeliveryNote(context.Context, CreateDeliveryNoteRequest) (DeliveryNote, error)

	// PreviewTax classifies a hypothetical sale without persisting anything.
	PreviewTax(context.Context, PreviewTaxRequest) (tax.Result, error)

	Logs(context.Context, GetInvoiceRequest) ([]DocumentLog, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
	ErrClientRequired     = errors.New("client_required")
	ErrNoItems            = errors.New("no_items")
	ErrInvalidItem        = errors.New("invalid_item")
	ErrInvalidStatus      = errors.New("invalid_status_transition")
	ErrDuplicateExists    = errors.New("duplicate_exists")
	ErrDuplicateSuspected = errors.New("duplicate_suspected")
)

// ValidationFailed carries the tax diagnostics that stopped a finalization.
type ValidationFailed struct {
	Errors []tax.ValidationError
}

func (e *ValidationFailed) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for _, v := range e.Errors {
		fields = append(fields, v.Code)
	}
	return fmt.Sprintf("validation_failed: %s", strings.Join(fields, ", "))
}
