package invoice

import (
	"github.com/smallfirma/fibua/internal/invoice/domain"
	"github.com/smallfirma/fibua/internal/invoice/repository"
	"github.com/smallfirma/fibua/internal/invoice/service"
	"github.com/smallfirma/fibua/internal/tenancy"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
	fx.Invoke(func(reg *tenancy.Registry) error {
		return reg.Register(
			&domain.Invoice{},
			&domain.InvoiceItem{},
			&domain.DeliveryNote{},
			&domain.DocumentLog{},
		)
	}),
)
