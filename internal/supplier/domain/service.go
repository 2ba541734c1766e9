package domain

import (
	"context"
	"errors"

	"github.com/smallfirma/fibua/internal/dedup"
)

type CreateSupplierRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	UID         string `json:"uid"`
	CountryCode string `json:"country_code"`
	Address     string `json:"address"`
	IBAN        string `json:"iban"`

	ConfirmDuplicate bool `json:"confirm_duplicate"`
}

type CreateSupplierResponse struct {
	Supplier   Supplier                `json:"supplier"`
	Duplicates *dedup.Result[Supplier] `json:"duplicates,omitempty"`
}

type GetSupplierRequest struct {
	ID string
}

type UpdateSupplierRequest struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	UID         string `json:"uid"`
	CountryCode string `json:"country_code"`
	Address     string `json:"address"`
	IBAN        string `json:"iban"`

	ConfirmDuplicate bool `json:"confirm_duplicate"`
}

type Service interface {
	Create(context.Context, CreateSupplierRequest) (CreateSupplierResponse, error)
	Update(context.Context, UpdateSupplierRequest) (CreateSupplierResponse, error)
	List(context.Context) ([]Supplier, error)
	GetByID(context.Context, GetSupplierRequest) (Supplier, error)
	Delete(context.Context, GetSupplierRequest) error
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
	ErrDuplicateExists    = errors.New("duplicate_exists")
	ErrDuplicateSuspected = errors.New("duplicate_suspected")
)
