package docnumber

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallfirma/fibua/internal/tenancy"
	"github.com/smallfirma/fibua/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Sequence{}))

	reg := tenancy.NewRegistry()
	require.NoError(t, reg.Register(&Sequence{}))
	require.NoError(t, db.Use(tenancy.NewPlugin(reg, nil)))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	return New(node), db
}

func TestNext_StartsAtOneAndIncrements(t *testing.T) {
	svc, db := newService(t)
	ctx := tenantctx.WithOrg(context.Background(), 5001)

	first, err := svc.Next(ctx, db, KindInvoice, 2026)
	require.NoError(t, err)
	assert.Equal(t, "R-2026-0001", first)

	second, err := svc.Next(ctx, db, KindInvoice, 2026)
	require.NoError(t, err)
	assert.Equal(t, "R-2026-0002", second)
}

func TestNext_RangesAreIndependent(t *testing.T) {
	svc, db := newService(t)
	ctx := tenantctx.WithOrg(context.Background(), 5001)

	_, err := svc.Next(ctx, db, KindInvoice, 2026)
	require.NoError(t, err)

	note, err := svc.Next(ctx, db, KindDeliveryNote, 2026)
	require.NoError(t, err)
	assert.Equal(t, "L-2026-0001", note)

	nextYear, err := svc.Next(ctx, db, KindInvoice, 2027)
	require.NoError(t, err)
	assert.Equal(t, "R-2027-0001", nextYear)
}

func TestNext_PerOrganization(t *testing.T) {
	svc, db := newService(t)
	ctxA := tenantctx.WithOrg(context.Background(), 5001)
	ctxB := tenantctx.WithOrg(context.Background(), 5002)

	_, err := svc.Next(ctxA, db, KindInvoice, 2026)
	require.NoError(t, err)

	got, err := svc.Next(ctxB, db, KindInvoice, 2026)
	require.NoError(t, err)
	assert.Equal(t, "R-2026-0001", got)
}

func TestNext_UnknownKind(t *testing.T) {
	svc, db := newService(t)
	ctx := tenantctx.WithOrg(context.Background(), 5001)

	_, err := svc.Next(ctx, db, "offer", 2026)
	assert.ErrorIs(t, err, ErrUnknownKind)
}
