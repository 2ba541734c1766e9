package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, supplier *Supplier) error
	Update(ctx context.Context, db *gorm.DB, supplier *Supplier) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Supplier, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]Supplier, error)
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
