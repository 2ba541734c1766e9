package tax

import (
	"go.uber.org/fx"
)

// Module provides the VAT engine from static configuration.
var Module = fx.Module("tax",
	fx.Provide(NewEngine),
)
