package domain

import (
	"context"
	"errors"

	"github.com/smallfirma/fibua/internal/dedup"
)

type CreateProductRequest struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
	UnitNet     int64  `json:"unit_net"`
	IsService   bool   `json:"is_service"`
	ReducedRate bool   `json:"reduced_rate"`

	ConfirmDuplicate bool `json:"confirm_duplicate"`
}

type CreateProductResponse struct {
	Product    Product                `json:"product"`
	Duplicates *dedup.Result[Product] `json:"duplicates,omitempty"`
}

type GetProductRequest struct {
	ID string
}

type UpdateProductRequest struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
	UnitNet     int64  `json:"unit_net"`
	IsService   bool   `json:"is_service"`
	ReducedRate bool   `json:"reduced_rate"`

	ConfirmDuplicate bool `json:"confirm_duplicate"`
}

type Service interface {
	Create(context.Context, CreateProductRequest) (CreateProductResponse, error)
	Update(context.Context, UpdateProductRequest) (CreateProductResponse, error)
	List(context.Context) ([]Product, error)
	GetByID(context.Context, GetProductRequest) (Product, error)
	Delete(context.Context, GetProductRequest) error
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidPrice       = errors.New("invalid_price")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
	ErrDuplicateExists    = errors.New("duplicate_exists")
	ErrDuplicateSuspected = errors.New("duplicate_suspected")
)
