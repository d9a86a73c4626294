package billing

import (
	"github.com/smallbiznis/tenantflow/internal/billing/adapters"
	"github.com/smallbiznis/tenantflow/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(adapters.NewDefaultRegistry),
	fx.Provide(adapters.ProvideClient),
	fx.Provide(service.New),
)
