package client

import (
	"github.com/smallfirma/fibua/internal/client/domain"
	"github.com/smallfirma/fibua/internal/client/repository"
	"github.com/smallfirma/fibua/internal/client/service"
	"github.com/smallfirma/fibua/internal/tenancy"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(func(reg *tenancy.Registry) error {
		return reg.Register(&domain.Client{})
	}),
)
