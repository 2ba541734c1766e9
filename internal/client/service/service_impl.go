package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/internal/client/domain"
	"github.com/smallfirma/fibua/internal/dedup"
	"github.com/smallfirma/fibua/internal/tenancy"
	"github.com/smallfirma/fibua/pkg/db/pagination"
	"github.com/smallfirma/fibua/pkg/tenantctx"
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
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.CreateClientResponse, error) {
	if _, ok := tenantctx.OrgID(ctx); !ok {
		return domain.CreateClientResponse{}, tenancy.ErrTenantNotSet
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CreateClientResponse{}, domain.ErrInvalidName
	}

	country := strings.ToUpper(strings.TrimSpace(req.CountryCode))
	if country == "" {
		country = "AT"
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:          s.genID.Generate(),
		Name:        name,
		Email:       strings.TrimSpace(req.Email),
		UID:         strings.TrimSpace(req.UID),
		CountryCode: country,
		Address:     strings.TrimSpace(req.Address),
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	verdict, err := s.detect(ctx, client)
	if err != nil {
		return domain.CreateClientResponse{}, err
	}
	resp := domain.CreateClientResponse{}
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

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return resp, err
	}

	s.log.Info("client created",
		zap.String("client_id", client.ID.String()),
		zap.Bool("duplicate_confirmed", req.ConfirmDuplicate && verdict.HasDuplicates),
	)

	resp.Client = client
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (domain.CreateClientResponse, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.CreateClientResponse{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CreateClientResponse{}, err
	}
	if existing == nil {
		return domain.CreateClientResponse{}, domain.ErrNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CreateClientResponse{}, domain.ErrInvalidName
	}

	existing.Name = name
	existing.Email = strings.TrimSpace(req.Email)
	existing.UID = strings.TrimSpace(req.UID)
	if country := strings.ToUpper(strings.TrimSpace(req.CountryCode)); country != "" {
		existing.CountryCode = country
	}
	existing.Address = strings.TrimSpace(req.Address)
	existing.UpdatedAt = time.Now().UTC()

	verdict, err := s.detectExcluding(ctx, *existing, id)
	if err != nil {
		return domain.CreateClientResponse{}, err
	}
	resp := domain.CreateClientResponse{}
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

	resp.Client = *existing
	return resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, req, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(client *domain.Client) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        client.ID.String(),
			CreatedAt: client.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}

	resp := domain.ListClientResponse{Clients: clients}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetClientRequest) (domain.Client, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetClientRequest) error {
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

func (s *Service) CheckDuplicates(ctx context.Context, req domain.CheckDuplicateRequest) (dedup.Result[domain.Client], error) {
	candidate := domain.Client{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		UID:     strings.TrimSpace(req.UID),
		Address: strings.TrimSpace(req.Address),
	}
	return s.detect(ctx, candidate)
}

func (s *Service) detect(ctx context.Context, candidate domain.Client) (dedup.Result[domain.Client], error) {
	return s.detectExcluding(ctx, candidate, 0)
}

// detectExcluding compares against the live population, leaving out the
// record itself when an update re-checks its own fields.
func (s *Service) detectExcluding(ctx context.Context, candidate domain.Client, exclude snowflake.ID) (dedup.Result[domain.Client], error) {
	population, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return dedup.Result[domain.Client]{}, err
	}
	if exclude != 0 {
		kept := population[:0]
		for _, item := range population {
			if item.ID != exclude {
				kept = append(kept, item)
			}
		}
		population = kept
	}

	verdict := dedup.Detect(candidate, population, domain.DedupFields, domain.DedupOptions())
	dedup.RecordVerdict("client", verdict.Action)
	return verdict, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
