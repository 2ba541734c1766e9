package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/internal/dedup"
	"github.com/smallfirma/fibua/internal/supplier/domain"
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
		log:   p.Log.Named("supplier.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSupplierRequest) (domain.CreateSupplierResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CreateSupplierResponse{}, domain.ErrInvalidName
	}

	country := strings.ToUpper(strings.TrimSpace(req.CountryCode))
	if country == "" {
		country = "AT"
	}

	now := time.Now().UTC()
	supplier := domain.Supplier{
		ID:          s.genID.Generate(),
		Name:        name,
		Email:       strings.TrimSpace(req.Email),
		UID:         strings.TrimSpace(req.UID),
		CountryCode: country,
		Address:     strings.TrimSpace(req.Address),
		IBAN:        strings.ReplaceAll(strings.TrimSpace(req.IBAN), " ", ""),
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	population, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return domain.CreateSupplierResponse{}, err
	}

	verdict := dedup.Detect(supplier, population, domain.DedupFields, domain.DedupOptions())
	dedup.RecordVerdict("supplier", verdict.Action)

	resp := domain.CreateSupplierResponse{}
	if verdict.HasDuplicates {
		resp.Duplicates = &verdict
	}

	switch verdict.Action {
	case dedup.ActionBlock:
		if !req.ConfirmDuplicate {
			return resp, domain.ErrDuplicateExists
		}
	case dedup.ActionWarn:
		if !req.ConfirmDuplicate {
			return resp, domain.ErrDuplicateSuspected
		}
	}

	if err := s.repo.Insert(ctx, s.db, &supplier); err != nil {
		return resp, err
	}

	resp.Supplier = supplier
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSupplierRequest) (domain.CreateSupplierResponse, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.CreateSupplierResponse{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CreateSupplierResponse{}, err
	}
	if existing == nil {
		return domain.CreateSupplierResponse{}, domain.ErrNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CreateSupplierResponse{}, domain.ErrInvalidName
	}

	existing.Name = name
	existing.Email = strings.TrimSpace(req.Email)
	existing.UID = strings.TrimSpace(req.UID)
	if country := strings.ToUpper(strings.TrimSpace(req.CountryCode)); country != "" {
		existing.CountryCode = country
	}
	existing.Address = strings.TrimSpace(req.Address)
	existing.IBAN = strings.ReplaceAll(strings.TrimSpace(req.IBAN), " ", "")
	existing.UpdatedAt = time.Now().UTC()

	population, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return domain.CreateSupplierResponse{}, err
	}
	kept := population[:0]
	for _, item := range population {
		if item.ID != id {
			kept = append(kept, item)
		}
	}

	verdict := dedup.Detect(*existing, kept, domain.DedupFields, domain.DedupOptions())
	dedup.RecordVerdict("supplier", verdict.Action)

	resp := domain.CreateSupplierResponse{}
	if verdict.HasDuplicates {
		resp.Duplicates = &verdict
	}

	switch verdict.Action {
	case dedup.ActionBlock:
		if !req.ConfirmDuplicate {
			return resp, domain.ErrDuplicateExists
		}
	case dedup.ActionWarn:
		if !req.ConfirmDuplicate {
			return resp, domain.ErrDuplicateSuspected
		}
	}

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return resp, err
	}

	resp.Supplier = *existing
	return resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.ListActive(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, req domain.GetSupplierRequest) (domain.Supplier, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Supplier{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Supplier{}, err
	}
	if item == nil {
		return domain.Supplier{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetSupplierRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	return s.repo.SoftDelete(ctx, s.db, id)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
