package domain

import (
	"context"
	"errors"

	"github.com/smallfirma/fibua/internal/dedup"
	"github.com/smallfirma/fibua/pkg/db/pagination"
)

type CreateClientRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	UID         string `json:"uid"`
	CountryCode string `json:"country_code"`
	Address     string `json:"address"`

	// ConfirmDuplicate acknowledges a previous duplicate verdict and lets the
	// write proceed despite it.
	ConfirmDuplicate bool `json:"confirm_duplicate"`
}

type CreateClientResponse struct {
	Client     Client               `json:"client"`
	Duplicates *dedup.Result[Client] `json:"duplicates,omitempty"`
}

type ListClientRequest struct {
	PageToken string
	PageSize  int
	Name      string
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type GetClientRequest struct {
	ID string
}

type UpdateClientRequest struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	UID         string `json:"uid"`
	CountryCode string `json:"country_code"`
	Address     string `json:"address"`

	ConfirmDuplicate bool `json:"confirm_duplicate"`
}

type CheckDuplicateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	UID     string `json:"uid"`
	Address string `json:"address"`
}

type Service interface {
	Create(context.Context, CreateClientRequest) (CreateClientResponse, error)
	Update(context.Context, UpdateClientRequest) (CreateClientResponse, error)
	List(context.Context, ListClientRequest) (ListClientResponse, error)
	GetByID(context.Context, GetClientRequest) (Client, error)
	Delete(context.Context, GetClientRequest) error
	CheckDuplicates(context.Context, CheckDuplicateRequest) (dedup.Result[Client], error)
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
	ErrDuplicateExists    = errors.New("duplicate_exists")
	ErrDuplicateSuspected = errors.New("duplicate_suspected")
)
