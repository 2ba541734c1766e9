package supplier

import (
	"github.com/smallfirma/fibua/internal/supplier/domain"
	"github.com/smallfirma/fibua/internal/supplier/repository"
	"github.com/smallfirma/fibua/internal/supplier/service"
	"github.com/smallfirma/fibua/internal/tenancy"
	"go.uber.org/fx"
)

var Module = fx.Module("supplier.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(func(reg *tenancy.Registry) error {
		return reg.Register(&domain.Supplier{})
	}),
)
