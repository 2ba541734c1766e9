package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/internal/dedup"
	"github.com/smallfirma/fibua/internal/product/domain"
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
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.CreateProductResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CreateProductResponse{}, domain.ErrInvalidName
	}
	if req.UnitNet < 0 {
		return domain.CreateProductResponse{}, domain.ErrInvalidPrice
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          s.genID.Generate(),
		Name:        name,
		SKU:         strings.TrimSpace(req.SKU),
		Description: strings.TrimSpace(req.Description),
		UnitNet:     req.UnitNet,
		IsService:   req.IsService,
		ReducedRate: req.ReducedRate,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	population, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return domain.CreateProductResponse{}, err
	}

	verdict := dedup.Detect(product, population, domain.DedupFields, domain.DedupOptions())
	dedup.RecordVerdict("product", verdict.Action)

	resp := domain.CreateProductResponse{}
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

	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		return resp, err
	}

	resp.Product = product
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProductRequest) (domain.CreateProductResponse, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.CreateProductResponse{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CreateProductResponse{}, err
	}
	if existing == nil {
		return domain.CreateProductResponse{}, domain.ErrNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CreateProductResponse{}, domain.ErrInvalidName
	}
	if req.UnitNet < 0 {
		return domain.CreateProductResponse{}, domain.ErrInvalidPrice
	}

	existing.Name = name
	existing.SKU = strings.TrimSpace(req.SKU)
	existing.Description = strings.TrimSpace(req.Description)
	existing.UnitNet = req.UnitNet
	existing.IsService = req.IsService
	existing.ReducedRate = req.ReducedRate
	existing.UpdatedAt = time.Now().UTC()

	population, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return domain.CreateProductResponse{}, err
	}
	kept := population[:0]
	for _, item := range population {
		if item.ID != id {
			kept = append(kept, item)
		}
	}

	verdict := dedup.Detect(*existing, kept, domain.DedupFields, domain.DedupOptions())
	dedup.RecordVerdict("product", verdict.Action)

	resp := domain.CreateProductResponse{}
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

	resp.Product = *existing
	return resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListActive(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, req domain.GetProductRequest) (domain.Product, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Product{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Product{}, err
	}
	if item == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetProductRequest) error {
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
