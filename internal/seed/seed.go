// Package seed creates the initial organization on an empty database.
package seed

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/internal/config"
	orgdomain "github.com/smallfirma/fibua/internal/organization/domain"
	"github.com/smallfirma/fibua/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
}

// EnsureDefaultOrg inserts one organization when none exist yet. Runs with
// tenant checks bypassed: at this point there is no organization to scope to.
func EnsureDefaultOrg(ctx context.Context, p Params) error {
	if !p.Config.SeedDefaultOrg {
		return nil
	}
	ctx = tenantctx.WithBypass(ctx)

	var count int64
	if err := p.DB.WithContext(ctx).Model(&orgdomain.Organization{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	org := orgdomain.Organization{
		ID:          p.GenID.Generate(),
		Name:        p.Config.SeedOrgName,
		CountryCode: p.Config.SeedOrgCountry,
		Metadata:    datatypes.JSONMap{"seeded": true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.DB.WithContext(ctx).Create(&org).Error; err != nil {
		return err
	}

	p.Log.Info("default organization seeded",
		zap.String("org_id", org.ID.String()),
		zap.String("name", org.Name),
	)
	return nil
}

var Module = fx.Module("seed",
	fx.Invoke(func(lc fx.Lifecycle, p Params) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return EnsureDefaultOrg(ctx, p)
			},
		})
	}),
)
