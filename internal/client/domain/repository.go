package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *Client) error
	Update(ctx context.Context, db *gorm.DB, client *Client) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Client, error)
	List(ctx context.Context, db *gorm.DB, filter ListClientRequest, page pagination.Pagination) ([]*Client, error)

	// ListActive returns every live client of the calling tenant; the
	// duplicate engine compares candidates against this population.
	ListActive(ctx context.Context, db *gorm.DB) ([]Client, error)

	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
