package domain

import (
	"context"
	"errors"
)

type CreateOrganizationRequest struct {
	Name          string `json:"name"`
	CountryCode   string `json:"country_code"`
	UID           string `json:"uid"`
	SmallBusiness bool   `json:"small_business"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

type GetOrganizationRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateOrganizationRequest) (Organization, error)
	GetByID(context.Context, GetOrganizationRequest) (Organization, error)
	List(context.Context) ([]Organization, error)
}

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidCountry = errors.New("invalid_country")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
)
