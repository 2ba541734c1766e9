package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	clientdomain "github.com/smallfirma/fibua/internal/client/domain"
	clientrepo "github.com/smallfirma/fibua/internal/client/repository"
	clientservice "github.com/smallfirma/fibua/internal/client/service"
	"github.com/smallfirma/fibua/internal/docnumber"
	"github.com/smallfirma/fibua/internal/invoice/domain"
	"github.com/smallfirma/fibua/internal/invoice/repository"
	orgdomain "github.com/smallfirma/fibua/internal/organization/domain"
	orgrepo "github.com/smallfirma/fibua/internal/organization/repository"
	orgservice "github.com/smallfirma/fibua/internal/organization/service"
	"github.com/smallfirma/fibua/internal/tax"
	"github.com/smallfirma/fibua/internal/tenancy"
	"github.com/smallfirma/fibua/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	invoices domain.Service
	clients  clientdomain.Service
	orgs     orgdomain.Service
	orgID    snowflake.ID
	clientID string
	ctx      context.Context
}

func newFixture(t *testing.T, smallBusiness bool, clientCountry, clientUID string) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orgdomain.Organization{},
		&clientdomain.Client{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
		&domain.DeliveryNote{},
		&domain.DocumentLog{},
		&docnumber.Sequence{},
	))

	reg := tenancy.NewRegistry()
	require.NoError(t, reg.Register(
		&clientdomain.Client{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
		&domain.DeliveryNote{},
		&domain.DocumentLog{},
		&docnumber.Sequence{},
	))
	require.NoError(t, db.Use(tenancy.NewPlugin(reg, nil)))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()

	orgs := orgservice.New(orgservice.Params{
		DB: db, Log: log, GenID: node, Repo: orgrepo.Provide(),
	})
	clients := clientservice.New(clientservice.Params{
		DB: db, Log: log, GenID: node, Repo: clientrepo.Provide(),
	})
	invoices := New(Params{
		DB:      db,
		Log:     log,
		GenID:   node,
		Repo:    repository.Provide(),
		Tax:     tax.NewEngine(tax.DefaultConfig()),
		Numbers: docnumber.New(node),
		Orgs:    orgs,
		Clients: clients,
	})

	org, err := orgs.Create(context.Background(), orgdomain.CreateOrganizationRequest{
		Name:          "Musterfirma GmbH",
		CountryCode:   "AT",
		UID:           "ATU12345678",
		SmallBusiness: smallBusiness,
	})
	require.NoError(t, err)

	ctx := tenantctx.WithOrg(context.Background(), org.ID)

	created, err := clients.Create(ctx, clientdomain.CreateClientRequest{
		Name:        "Kunde AG",
		CountryCode: clientCountry,
		UID:         clientUID,
	})
	require.NoError(t, err)

	return &fixture{
		db:       db,
		invoices: invoices,
		clients:  clients,
		orgs:     orgs,
		orgID:    org.ID,
		clientID: created.Client.ID.String(),
		ctx:      ctx,
	}
}

func items(unitNet int64) []domain.ItemInput {
	return []domain.ItemInput{{Description: "Beratung", Quantity: 2, UnitNet: unitNet}}
}

func TestCreate_DomesticStandardRate(t *testing.T) {
	f := newFixture(t, false, "AT", "")

	resp, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID: f.clientID,
		Items:    items(10000),
	})
	require.NoError(t, err)

	inv := resp.Invoice
	assert.Equal(t, tax.CaseDomestic, inv.TaxCase)
	assert.Equal(t, tax.CodeDomesticStandard, inv.TaxCode)
	assert.Equal(t, "4000", inv.TaxAccount)
	assert.Equal(t, float64(20), inv.TaxRatePercent)
	assert.Equal(t, int64(20000), inv.NetTotal)
	assert.Equal(t, int64(4000), inv.TaxTotal)
	assert.Equal(t, int64(24000), inv.GrossTotal)
	assert.Equal(t, domain.StatusDraft, inv.Status)
	assert.Empty(t, inv.DocNumber)
}

func TestCreate_SmallBusinessBeatsEverything(t *testing.T) {
	f := newFixture(t, true, "DE", "DE123456789")

	resp, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID: f.clientID,
		Items:    items(5000),
	})
	require.NoError(t, err)

	inv := resp.Invoice
	assert.Equal(t, tax.CaseSmallBusiness, inv.TaxCase)
	assert.Equal(t, tax.CodeSmallBusiness, inv.TaxCode)
	assert.True(t, inv.IsSmallBusinessExempt)
	assert.Zero(t, inv.TaxTotal)
	assert.Equal(t, inv.NetTotal, inv.GrossTotal)
}

func TestCreate_IntraEUWithUID(t *testing.T) {
	f := newFixture(t, false, "DE", "DE123456789")

	resp, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID:    f.clientID,
		Items:       items(10000),
		GoodsSupply: true,
	})
	require.NoError(t, err)

	inv := resp.Invoice
	assert.Equal(t, tax.CaseIntraEUSale, inv.TaxCase)
	assert.Equal(t, tax.CodeIntraEUSale, inv.TaxCode)
	assert.True(t, inv.IsIntraEUSale)
	assert.Zero(t, inv.TaxTotal)
	assert.Equal(t, "DE123456789", inv.BuyerUID)
}

func TestCreate_EUGoodsWithoutUIDFallsBackToDomestic(t *testing.T) {
	f := newFixture(t, false, "DE", "")

	resp, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID:    f.clientID,
		Items:       items(10000),
		GoodsSupply: true,
	})
	require.NoError(t, err)
	assert.Equal(t, tax.CaseDomestic, resp.Invoice.TaxCase)
	assert.Equal(t, float64(20), resp.Invoice.TaxRatePercent)
}

func TestCreate_EUServiceWithoutUIDIsReverseCharge(t *testing.T) {
	f := newFixture(t, false, "DE", "")

	resp, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID: f.clientID,
		Items:    items(10000),
	})
	require.NoError(t, err)
	assert.Equal(t, tax.CaseReverseCharge, resp.Invoice.TaxCase)
	assert.Equal(t, tax.CodeReverseCharge, resp.Invoice.TaxCode)
	assert.True(t, resp.Invoice.IsReverseCharge)
}

func TestCreate_TriangularIsUserChosen(t *testing.T) {
	f := newFixture(t, false, "DE", "DE123456789")

	resp, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID:   f.clientID,
		Items:      items(10000),
		Triangular: true,
	})
	require.NoError(t, err)
	assert.Equal(t, tax.CaseTriangular, resp.Invoice.TaxCase)
	assert.Equal(t, tax.CodeTriangular, resp.Invoice.TaxCode)
	assert.Equal(t, tax.AccountTriangular, resp.Invoice.TaxAccount)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t, false, "AT", "")

	_, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{ClientID: f.clientID})
	assert.ErrorIs(t, err, domain.ErrNoItems)

	_, err = f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{Items: items(100)})
	assert.ErrorIs(t, err, domain.ErrClientRequired)

	_, err = f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID: f.clientID,
		Items:    []domain.ItemInput{{Description: "  ", UnitNet: 100}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidItem)

	_, err = f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID: f.clientID,
		Items:    []domain.ItemInput{{Description: "x", UnitNet: -1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidItem)
}

func TestCreate_NoTenantInContext(t *testing.T) {
	f := newFixture(t, false, "AT", "")

	_, err := f.invoices.Create(context.Background(), domain.CreateInvoiceRequest{
		ClientID: f.clientID,
		Items:    items(100),
	})
	assert.ErrorIs(t, err, tenancy.ErrTenantNotSet)
}

func TestCreate_ManualNumberDuplicateBlocked(t *testing.T) {
	f := newFixture(t, false, "AT", "")

	first, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID:  f.clientID,
		Items:     items(100),
		DocNumber: "R-2026-0042",
	})
	require.NoError(t, err)
	require.Equal(t, "R-2026-0042", first.Invoice.DocNumber)

	_, err = f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID:  f.clientID,
		Items:     items(100),
		DocNumber: "R-2026-0042",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateExists)

	resp, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID:         f.clientID,
		Items:            items(100),
		DocNumber:        "R-2026-0042",
		ConfirmDuplicate: true,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Duplicates)
	assert.True(t, resp.Duplicates.HasDuplicates)
}

func TestFinalize_AssignsNumberAndLogs(t *testing.T) {
	f := newFixture(t, false, "AT", "")

	created, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID:  f.clientID,
		Items:     items(10000),
		IssueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	req := domain.GetInvoiceRequest{ID: created.Invoice.ID.String()}
	inv, err := f.invoices.Finalize(f.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinalized, inv.Status)
	assert.Equal(t, "R-2026-0001", inv.DocNumber)

	// already finalized
	_, err = f.invoices.Finalize(f.ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	logs, err := f.invoices.Logs(f.ctx, req)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.EventCreated, logs[0].Event)
	assert.Equal(t, domain.EventFinalized, logs[1].Event)
}

func TestFinalize_SequenceIncrements(t *testing.T) {
	f := newFixture(t, false, "AT", "")

	for i, want := range []string{"R-2026-0001", "R-2026-0002"} {
		created, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
			ClientID:  f.clientID,
			Items:     items(100),
			IssueDate: time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		inv, err := f.invoices.Finalize(f.ctx, domain.GetInvoiceRequest{ID: created.Invoice.ID.String()})
		require.NoError(t, err)
		assert.Equal(t, want, inv.DocNumber)
	}
}

func TestFinalize_ReverseChargeWithoutUIDFails(t *testing.T) {
	f := newFixture(t, false, "DE", "")

	created, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID: f.clientID,
		Items:    items(10000),
	})
	require.NoError(t, err)
	require.Equal(t, tax.CaseReverseCharge, created.Invoice.TaxCase)

	_, err = f.invoices.Finalize(f.ctx, domain.GetInvoiceRequest{ID: created.Invoice.ID.String()})
	var vf *domain.ValidationFailed
	require.ErrorAs(t, err, &vf)
	require.NotEmpty(t, vf.Errors)
	assert.Equal(t, tax.ErrCodeMissingBuyerUID, vf.Errors[0].Code)
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t, false, "AT", "")

	created, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID: f.clientID,
		Items:    items(100),
	})
	require.NoError(t, err)
	req := domain.GetInvoiceRequest{ID: created.Invoice.ID.String()}

	// paid requires finalized
	_, err = f.invoices.MarkPaid(f.ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.invoices.Finalize(f.ctx, req)
	require.NoError(t, err)

	paid, err := f.invoices.MarkPaid(f.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)

	_, err = f.invoices.Cancel(f.ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestDelete_OnlyDrafts(t *testing.T) {
	f := newFixture(t, false, "AT", "")

	created, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID: f.clientID,
		Items:    items(100),
	})
	require.NoError(t, err)
	req := domain.GetInvoiceRequest{ID: created.Invoice.ID.String()}

	require.NoError(t, f.invoices.Delete(f.ctx, req))
	_, err = f.invoices.GetByID(f.ctx, req)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoices_InvisibleAcrossTenants(t *testing.T) {
	f := newFixture(t, false, "AT", "")

	created, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID: f.clientID,
		Items:    items(100),
	})
	require.NoError(t, err)

	other, err := f.orgs.Create(context.Background(), orgdomain.CreateOrganizationRequest{
		Name: "Andere GmbH", CountryCode: "AT",
	})
	require.NoError(t, err)
	otherCtx := tenantctx.WithOrg(context.Background(), other.ID)

	_, err = f.invoices.GetByID(otherCtx, domain.GetInvoiceRequest{ID: created.Invoice.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.invoices.List(otherCtx, domain.ListInvoiceRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Invoices)
}

func TestCreateDeliveryNote(t *testing.T) {
	f := newFixture(t, false, "AT", "")

	created, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		ClientID: f.clientID,
		Items:    items(5000),
	})
	require.NoError(t, err)

	note, err := f.invoices.CreateDeliveryNote(f.ctx, domain.CreateDeliveryNoteRequest{
		InvoiceID: created.Invoice.ID.String(),
		Note:      "2 Pakete",
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("L-%d-0001", time.Now().UTC().Year()), note.DocNumber)
	assert.Equal(t, "Kunde AG", note.ClientName)
	require.NotNil(t, note.InvoiceID)
	assert.Equal(t, created.Invoice.ID, *note.InvoiceID)

	// delivery notes draw from their own number range
	second, err := f.invoices.CreateDeliveryNote(f.ctx, domain.CreateDeliveryNoteRequest{
		InvoiceID: created.Invoice.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("L-%d-0002", time.Now().UTC().Year()), second.DocNumber)

	cancelled, err := f.invoices.Cancel(f.ctx, domain.GetInvoiceRequest{ID: created.Invoice.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	_, err = f.invoices.CreateDeliveryNote(f.ctx, domain.CreateDeliveryNoteRequest{
		InvoiceID: created.Invoice.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestPreviewTax(t *testing.T) {
	f := newFixture(t, false, "US", "")

	result, err := f.invoices.PreviewTax(f.ctx, domain.PreviewTaxRequest{
		ClientID:    f.clientID,
		GoodsSupply: true,
	})
	require.NoError(t, err)
	assert.Equal(t, tax.CaseExport, result.Case)
	assert.True(t, result.IsExport)
}
