package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, inv *Invoice, items []InvoiceItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceRequest, page pagination.Pagination) ([]*Invoice, error)

	// ListLive returns the tenant's non-deleted invoices; the duplicate
	// engine compares manually numbered candidates against it.
	ListLive(ctx context.Context, db *gorm.DB) ([]Invoice, error)

	Update(ctx context.Context, db *gorm.DB, inv *Invoice) error
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertDeliveryNote(ctx context.Context, db *gorm.DB, note *DeliveryNote) error

	AppendLog(ctx context.Context, db *gorm.DB, log *DocumentLog) error
	ListLogs(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]DocumentLog, error)
}
