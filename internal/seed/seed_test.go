package seed

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallfirma/fibua/internal/config"
	orgdomain "github.com/smallfirma/fibua/internal/organization/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedParams(t *testing.T, cfg config.Config) Params {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&orgdomain.Organization{}))

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	return Params{Config: cfg, DB: db, Log: zap.NewNop(), GenID: node}
}

func TestEnsureDefaultOrg_CreatesOnce(t *testing.T) {
	p := seedParams(t, config.Config{
		SeedDefaultOrg: true,
		SeedOrgName:    "Musterfirma",
		SeedOrgCountry: "AT",
	})

	require.NoError(t, EnsureDefaultOrg(context.Background(), p))
	require.NoError(t, EnsureDefaultOrg(context.Background(), p))

	var count int64
	require.NoError(t, p.DB.Model(&orgdomain.Organization{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureDefaultOrg_Disabled(t *testing.T) {
	p := seedParams(t, config.Config{SeedDefaultOrg: false})

	require.NoError(t, EnsureDefaultOrg(context.Background(), p))

	var count int64
	require.NoError(t, p.DB.Model(&orgdomain.Organization{}).Count(&count).Error)
	assert.Zero(t, count)
}
