package invitation

import (
	"github.com/smallbiznis/tenantflow/internal/invitation/repository"
	"github.com/smallbiznis/tenantflow/internal/invitation/service"
	"github.com/smallbiznis/tenantflow/pkg/token"
	"go.uber.org/fx"
)

var Module = fx.Module("invitation.service",
	fx.Provide(repository.Provide),
	fx.Provide(func() token.Generator { return token.NewGenerator() }),
	fx.Provide(service.New),
)
