package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("organization.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrganizationRequest) (domain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Organization{}, domain.ErrInvalidName
	}

	country := strings.ToUpper(strings.TrimSpace(req.CountryCode))
	if country == "" {
		country = "AT"
	}
	if len(country) != 2 {
		return domain.Organization{}, domain.ErrInvalidCountry
	}

	now := time.Now().UTC()
	org := domain.Organization{
		ID:            s.genID.Generate(),
		Name:          name,
		CountryCode:   country,
		UID:           strings.TrimSpace(req.UID),
		SmallBusiness: req.SmallBusiness,
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
		Metadata:      datatypes.JSONMap{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &org); err != nil {
		return domain.Organization{}, err
	}

	s.log.Info("organization created", zap.String("org_id", org.ID.String()))
	return org, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetOrganizationRequest) (domain.Organization, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Organization{}, domain.ErrInvalidID
	}

	org, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Organization{}, err
	}
	if org == nil {
		return domain.Organization{}, domain.ErrNotFound
	}
	return *org, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Organization, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	orgs := make([]domain.Organization, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orgs = append(orgs, *item)
	}
	return orgs, nil
}
