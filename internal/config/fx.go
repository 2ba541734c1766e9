package config

import (
	"github.com/smallfirma/fibua/internal/tax"
	"go.uber.org/fx"
)

func taxConfig(cfg Config) tax.Config {
	return tax.Config{
		HomeCountry:  cfg.TaxHomeCountry,
		StandardRate: cfg.TaxStandardRate,
		ReducedRate:  cfg.TaxReducedRate,
	}
}

// Module provides the application configuration and the derived VAT engine
// configuration.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		taxConfig,
	),
)
