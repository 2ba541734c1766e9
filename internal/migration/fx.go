package migration

import (
	"github.com/smallfirma/fibua/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		// Versioned migrations target postgres; other dialects (sqlite in
		// tests and local development) fall back to schema sync.
		if cfg.DBType != "postgres" {
			log.Info("skipping versioned migrations", zap.String("db_type", cfg.DBType))
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
