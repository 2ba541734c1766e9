package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallfirma/fibua/internal/client/domain"
	"github.com/smallfirma/fibua/internal/client/repository"
	"github.com/smallfirma/fibua/internal/tenancy"
	"github.com/smallfirma/fibua/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Client{}))

	reg := tenancy.NewRegistry()
	require.NoError(t, reg.Register(&domain.Client{}))
	require.NoError(t, db.Use(tenancy.NewPlugin(reg, nil)))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	return New(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()})
}

func orgCtx(id int64) context.Context {
	return tenantctx.WithOrg(context.Background(), snowflake.ID(id))
}

func TestCreate_TrimsAndDefaults(t *testing.T) {
	svc := newService(t)

	resp, err := svc.Create(orgCtx(1), domain.CreateClientRequest{
		Name:  "  Kunde AG  ",
		Email: " office@kunde.at ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Kunde AG", resp.Client.Name)
	assert.Equal(t, "office@kunde.at", resp.Client.Email)
	assert.Equal(t, "AT", resp.Client.CountryCode)
	assert.Nil(t, resp.Duplicates)
}

func TestCreate_NoTenantInContext(t *testing.T) {
	svc := newService(t)

	_, err := svc.Create(context.Background(), domain.CreateClientRequest{Name: "Kunde AG"})
	assert.ErrorIs(t, err, tenancy.ErrTenantNotSet)
}

func TestCreate_BlankNameRejected(t *testing.T) {
	svc := newService(t)

	_, err := svc.Create(orgCtx(1), domain.CreateClientRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestCreate_ExactDuplicateBlocked(t *testing.T) {
	svc := newService(t)
	ctx := orgCtx(1)

	_, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Kunde AG", UID: "ATU12345678"})
	require.NoError(t, err)

	resp, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Kunde AG", UID: "ATU12345678"})
	assert.ErrorIs(t, err, domain.ErrDuplicateExists)
	require.NotNil(t, resp.Duplicates)
	assert.NotEmpty(t, resp.Duplicates.Matches)

	// confirmation lets the write through
	confirmed, err := svc.Create(ctx, domain.CreateClientRequest{
		Name: "Kunde AG", UID: "ATU12345678", ConfirmDuplicate: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, confirmed.Client.ID)
}

func TestCreate_FuzzyDuplicateWarns(t *testing.T) {
	svc := newService(t)
	ctx := orgCtx(1)

	_, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Muster Handel GmbH"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "Muster Handels GmbH"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSuspected)
}

func TestCreate_DeletedClientsLeaveThePopulation(t *testing.T) {
	svc := newService(t)
	ctx := orgCtx(1)

	resp, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Kunde AG"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, domain.GetClientRequest{ID: resp.Client.ID.String()}))

	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "Kunde AG"})
	assert.NoError(t, err)
}

func TestUpdate_SkipsItselfInDuplicateCheck(t *testing.T) {
	svc := newService(t)
	ctx := orgCtx(1)

	resp, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Kunde AG", Email: "a@b.at"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, domain.UpdateClientRequest{
		ID:    resp.Client.ID.String(),
		Name:  "Kunde AG",
		Email: "neu@b.at",
	})
	require.NoError(t, err)
	assert.Equal(t, "neu@b.at", updated.Client.Email)
}

func TestUpdate_CollidingWithAnotherClientBlocked(t *testing.T) {
	svc := newService(t)
	ctx := orgCtx(1)

	_, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Alpha GmbH"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Beta GmbH"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, domain.UpdateClientRequest{
		ID:   second.Client.ID.String(),
		Name: "Alpha GmbH",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateExists)
}

func TestClients_ScopedPerTenant(t *testing.T) {
	svc := newService(t)

	_, err := svc.Create(orgCtx(1), domain.CreateClientRequest{Name: "Kunde AG"})
	require.NoError(t, err)

	// same name in another org is no duplicate
	_, err = svc.Create(orgCtx(2), domain.CreateClientRequest{Name: "Kunde AG"})
	assert.NoError(t, err)

	list, err := svc.List(orgCtx(2), domain.ListClientRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Clients, 1)
}

func TestList_Pagination(t *testing.T) {
	svc := newService(t)
	ctx := orgCtx(1)

	for _, name := range []string{"Alpha GmbH", "Beta KG", "Gamma OG"} {
		_, err := svc.Create(ctx, domain.CreateClientRequest{Name: name})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, domain.ListClientRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.Clients, 2)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.NextPageToken)

	rest, err := svc.List(ctx, domain.ListClientRequest{PageSize: 2, PageToken: page.NextPageToken})
	require.NoError(t, err)
	assert.Len(t, rest.Clients, 1)
	assert.False(t, rest.HasMore)
}
