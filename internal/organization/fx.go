package organization

import (
	"github.com/smallfirma/fibua/internal/organization/repository"
	"github.com/smallfirma/fibua/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
