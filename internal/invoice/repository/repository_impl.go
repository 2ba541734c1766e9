package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/internal/invoice/domain"
	"github.com/smallfirma/fibua/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inv *domain.Invoice, items []domain.InvoiceItem) error {
	if err := db.WithContext(ctx).Create(inv).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).Create(&items).Error; err != nil {
		return err
	}
	inv.Items = items
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).First(&inv, "id = ? AND deleted = ?", id, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var items []domain.InvoiceItem
	err = db.WithContext(ctx).
		Where("invoice_id = ?", id).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return &inv, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceRequest, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("deleted = ?", false)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		if id, err := snowflake.ParseString(filter.ClientID); err == nil {
			stmt = stmt.Where("client_id = ?", id)
		}
	}
	err := page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ListLive(ctx context.Context, db *gorm.DB) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Where("deleted = ?", false).
		Find(&invoices).Error
	return invoices, err
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Save(inv).Error
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]any{"deleted": true}).Error
}

func (r *repo) InsertDeliveryNote(ctx context.Context, db *gorm.DB, note *domain.DeliveryNote) error {
	return db.WithContext(ctx).Create(note).Error
}

func (r *repo) AppendLog(ctx context.Context, db *gorm.DB, log *domain.DocumentLog) error {
	return db.WithContext(ctx).Create(log).Error
}

func (r *repo) ListLogs(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.DocumentLog, error) {
	var logs []domain.DocumentLog
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at asc, id asc").
		Find(&logs).Error
	return logs, err
}
