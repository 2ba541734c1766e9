package docnumber

import (
	"github.com/smallfirma/fibua/internal/tenancy"
	"go.uber.org/fx"
)

var Module = fx.Module("docnumber",
	fx.Provide(New),
	fx.Invoke(func(reg *tenancy.Registry) error {
		return reg.Register(&Sequence{})
	}),
)
