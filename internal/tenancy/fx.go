package tenancy

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func newMetricsFromDefault() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

func installPlugin(db *gorm.DB, plugin *Plugin) error {
	return db.Use(plugin)
}

// Module wires the isolation registry and installs the enforcement plugin on
// the shared database handle. Feature modules register their models against
// the provided *Registry.
var Module = fx.Module("tenancy",
	fx.Provide(
		NewRegistry,
		newMetricsFromDefault,
		NewPlugin,
	),
	fx.Invoke(installPlugin),
)
