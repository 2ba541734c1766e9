package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/smallfirma/fibua/internal/client/domain"
	"github.com/smallfirma/fibua/internal/dedup"
	"github.com/smallfirma/fibua/internal/docnumber"
	"github.com/smallfirma/fibua/internal/invoice/domain"
	orgdomain "github.com/smallfirma/fibua/internal/organization/domain"
	"github.com/smallfirma/fibua/internal/tax"
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

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Tax     *tax.Engine
	Numbers *docnumber.Service
	Orgs    orgdomain.Service
	Clients clientdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	tax     *tax.Engine
	numbers *docnumber.Service
	orgs    orgdomain.Service
	clients clientdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("invoice.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		tax:     p.Tax,
		numbers: p.Numbers,
		orgs:    p.Orgs,
		clients: p.Clients,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.CreateInvoiceResponse, error) {
	orgID, ok := tenantctx.OrgID(ctx)
	if !ok {
		return domain.CreateInvoiceResponse{}, tenancy.ErrTenantNotSet
	}
	if strings.TrimSpace(req.ClientID) == "" {
		return domain.CreateInvoiceResponse{}, domain.ErrClientRequired
	}
	if len(req.Items) == 0 {
		return domain.CreateInvoiceResponse{}, domain.ErrNoItems
	}

	client, err := s.clients.GetByID(ctx, clientdomain.GetClientRequest{ID: req.ClientID})
	if err != nil {
		if errors.Is(err, clientdomain.ErrNotFound) || errors.Is(err, clientdomain.ErrInvalidID) {
			return domain.CreateInvoiceResponse{}, domain.ErrNotFound
		}
		return domain.CreateInvoiceResponse{}, err
	}

	org, err := s.orgs.GetByID(ctx, orgdomain.GetOrganizationRequest{ID: orgID.String()})
	if err != nil {
		return domain.CreateInvoiceResponse{}, err
	}

	items := make([]domain.InvoiceItem, 0, len(req.Items))
	var netTotal int64
	for _, in := range req.Items {
		desc := strings.TrimSpace(in.Description)
		if desc == "" || in.UnitNet < 0 {
			return domain.CreateInvoiceResponse{}, domain.ErrInvalidItem
		}
		qty := in.Quantity
		if qty <= 0 {
			qty = 1
		}
		item := domain.InvoiceItem{
			ID:          s.genID.Generate(),
			Description: desc,
			Quantity:    qty,
			UnitNet:     in.UnitNet,
			LineNet:     qty * in.UnitNet,
		}
		if pid := strings.TrimSpace(in.ProductID); pid != "" {
			id, err := snowflake.ParseString(pid)
			if err != nil {
				return domain.CreateInvoiceResponse{}, domain.ErrInvalidItem
			}
			item.ProductID = &id
		}
		netTotal += item.LineNet
		items = append(items, item)
	}

	buyerUID := strings.TrimSpace(req.BuyerUID)
	if buyerUID == "" {
		buyerUID = strings.TrimSpace(client.UID)
	}

	result := s.classify(org, client.CountryCode, buyerUID, req)
	taxTotal := int64(math.Round(float64(netTotal) * result.RatePercent / 100))

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now().UTC()
	}

	now := time.Now().UTC()
	inv := domain.Invoice{
		ID:         s.genID.Generate(),
		DocNumber:  strings.TrimSpace(req.DocNumber),
		ClientID:   client.ID,
		ClientName: client.Name,
		Status:     domain.StatusDraft,
		IssueDate:  issueDate,
		NetTotal:   netTotal,
		TaxTotal:   taxTotal,
		GrossTotal: netTotal + taxTotal,

		TaxCase:        result.Case,
		TaxRatePercent: result.RatePercent,
		TaxCode:        result.Code,
		TaxAccount:     result.Account,

		IsReverseCharge:       result.IsReverseCharge,
		IsExport:              result.IsExport,
		IsIntraEUSale:         result.IsIntraEUSale,
		IsSmallBusinessExempt: result.IsSmallBusinessExempt,

		BuyerCountry: client.CountryCode,
		BuyerUID:     buyerUID,

		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	resp := domain.CreateInvoiceResponse{}
	if inv.DocNumber != "" {
		verdict, err := s.detect(ctx, inv)
		if err != nil {
			return domain.CreateInvoiceResponse{}, err
		}
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
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &inv, items); err != nil {
			return err
		}
		return s.appendLog(ctx, tx, inv.ID, domain.EventCreated, string(result.Case))
	})
	if err != nil {
		return resp, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("tax_case", string(inv.TaxCase)),
		zap.Int64("gross_total", inv.GrossTotal),
	)

	resp.Invoice = inv
	return resp, nil
}

// classify stamps the VAT treatment. A user-marked chain transaction takes
// the triangular scheme directly; everything else goes through the engine.
func (s *Service) classify(org orgdomain.Organization, buyerCountry, buyerUID string, req domain.CreateInvoiceRequest) tax.Result {
	if req.Triangular && !org.SmallBusiness {
		return tax.Result{
			Case:          tax.CaseTriangular,
			Code:          tax.CodeTriangular,
			Account:       tax.AccountTriangular,
			IsIntraEUSale: true,
		}
	}
	return s.tax.Determine(tax.Input{
		SellerIsSmallBusiness: org.SmallBusiness,
		BuyerCountry:          buyerCountry,
		BuyerCountryInEU:      tax.IsEUMember(buyerCountry),
		BuyerUID:              buyerUID,
		IsGoodsSupply:         req.GoodsSupply,
		ReducedRate:           req.ReducedRate,
	})
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.Invoice, error) {
	inv, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *inv, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, req, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(inv *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        inv.ID.String(),
			CreatedAt: inv.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Finalize(ctx context.Context, req domain.GetInvoiceRequest) (domain.Invoice, error) {
	inv, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if inv.Status != domain.StatusDraft {
		return domain.Invoice{}, domain.ErrInvalidStatus
	}

	if verrs := tax.Validate(tax.Result{Case: inv.TaxCase}, inv.BuyerUID); len(verrs) > 0 {
		return domain.Invoice{}, &domain.ValidationFailed{Errors: verrs}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if inv.DocNumber == "" {
			number, err := s.numbers.Next(ctx, tx, docnumber.KindInvoice, inv.IssueDate.Year())
			if err != nil {
				return err
			}
			inv.DocNumber = number
		}
		inv.Status = domain.StatusFinalized
		inv.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, inv); err != nil {
			return err
		}
		return s.appendLog(ctx, tx, inv.ID, domain.EventFinalized, inv.DocNumber)
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice finalized",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("doc_number", inv.DocNumber),
	)
	return *inv, nil
}

func (s *Service) MarkPaid(ctx context.Context, req domain.GetInvoiceRequest) (domain.Invoice, error) {
	return s.transition(ctx, req, domain.StatusPaid, domain.EventPaid, domain.StatusFinalized)
}

func (s *Service) Cancel(ctx context.Context, req domain.GetInvoiceRequest) (domain.Invoice, error) {
	return s.transition(ctx, req, domain.StatusCancelled, domain.EventCancelled, domain.StatusDraft, domain.StatusFinalized)
}

func (s *Service) transition(ctx context.Context, req domain.GetInvoiceRequest, to domain.Status, event string, from ...domain.Status) (domain.Invoice, error) {
	inv, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	allowed := false
	for _, status := range from {
		if inv.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return domain.Invoice{}, domain.ErrInvalidStatus
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		inv.Status = to
		inv.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, inv); err != nil {
			return err
		}
		return s.appendLog(ctx, tx, inv.ID, event, "")
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return *inv, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetInvoiceRequest) error {
	inv, err := s.load(ctx, req.ID)
	if err != nil {
		return err
	}
	if inv.Status != domain.StatusDraft {
		return domain.ErrInvalidStatus
	}
	return s.repo.SoftDelete(ctx, s.db, inv.ID)
}

func (s *Service) CreateDeliveryNote(ctx context.Context, req domain.CreateDeliveryNoteRequest) (domain.DeliveryNote, error) {
	inv, err := s.load(ctx, req.InvoiceID)
	if err != nil {
		return domain.DeliveryNote{}, err
	}
	if inv.Status == domain.StatusCancelled {
		return domain.DeliveryNote{}, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	invoiceID := inv.ID
	note := domain.DeliveryNote{
		ID:         s.genID.Generate(),
		ClientID:   inv.ClientID,
		ClientName: inv.ClientName,
		InvoiceID:  &invoiceID,
		Status:     domain.StatusFinalized,
		IssueDate:  now,
		Note:       strings.TrimSpace(req.Note),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		number, err := s.numbers.Next(ctx, tx, docnumber.KindDeliveryNote, now.Year())
		if err != nil {
			return err
		}
		note.DocNumber = number
		if err := s.repo.InsertDeliveryNote(ctx, tx, &note); err != nil {
			return err
		}
		noteID := note.ID
		return s.repo.AppendLog(ctx, tx, &domain.DocumentLog{
			ID:             s.genID.Generate(),
			DeliveryNoteID: &noteID,
			Event:          domain.EventCreated,
			Detail:         note.DocNumber,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return domain.DeliveryNote{}, err
	}

	s.log.Info("delivery note created",
		zap.String("delivery_note_id", note.ID.String()),
		zap.String("doc_number", note.DocNumber),
		zap.String("invoice_id", inv.ID.String()),
	)
	return note, nil
}

func (s *Service) PreviewTax(ctx context.Context, req domain.PreviewTaxRequest) (tax.Result, error) {
	orgID, ok := tenantctx.OrgID(ctx)
	if !ok {
		return tax.Result{}, tenancy.ErrTenantNotSet
	}

	client, err := s.clients.GetByID(ctx, clientdomain.GetClientRequest{ID: req.ClientID})
	if err != nil {
		if errors.Is(err, clientdomain.ErrNotFound) || errors.Is(err, clientdomain.ErrInvalidID) {
			return tax.Result{}, domain.ErrNotFound
		}
		return tax.Result{}, err
	}

	org, err := s.orgs.GetByID(ctx, orgdomain.GetOrganizationRequest{ID: orgID.String()})
	if err != nil {
		return tax.Result{}, err
	}

	buyerUID := strings.TrimSpace(req.BuyerUID)
	if buyerUID == "" {
		buyerUID = strings.TrimSpace(client.UID)
	}

	return s.tax.Determine(tax.Input{
		SellerIsSmallBusiness: org.SmallBusiness,
		BuyerCountry:          client.CountryCode,
		BuyerCountryInEU:      tax.IsEUMember(client.CountryCode),
		BuyerUID:              buyerUID,
		IsGoodsSupply:         req.GoodsSupply,
		ReducedRate:           req.ReducedRate,
	}), nil
}

func (s *Service) Logs(ctx context.Context, req domain.GetInvoiceRequest) ([]domain.DocumentLog, error) {
	inv, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLogs(ctx, s.db, inv.ID)
}

func (s *Service) detect(ctx context.Context, candidate domain.Invoice) (dedup.Result[domain.Invoice], error) {
	population, err := s.repo.ListLive(ctx, s.db)
	if err != nil {
		return dedup.Result[domain.Invoice]{}, err
	}

	verdict := dedup.Detect(candidate, population, domain.DedupFields, domain.DedupOptions())
	dedup.RecordVerdict("invoice", verdict.Action)
	return verdict, nil
}

func (s *Service) appendLog(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, event, detail string) error {
	id := invoiceID
	return s.repo.AppendLog(ctx, tx, &domain.DocumentLog{
		ID:        s.genID.Generate(),
		InvoiceID: &id,
		Event:     event,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *Service) load(ctx context.Context, rawID string) (*domain.Invoice, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	inv, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}
