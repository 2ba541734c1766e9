package product

import (
	"github.com/smallfirma/fibua/internal/product/domain"
	"github.com/smallfirma/fibua/internal/product/repository"
	"github.com/smallfirma/fibua/internal/product/service"
	"github.com/smallfirma/fibua/internal/tenancy"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(func(reg *tenancy.Registry) error {
		return reg.Register(&domain.Product{})
	}),
)
