package paymentaccount

import (
	"github.com/smallbiznis/tenantflow/internal/paymentaccount/repository"
	"github.com/smallbiznis/tenantflow/internal/paymentaccount/service"
	"go.uber.org/fx"
)

var Module = fx.Module("paymentaccount.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
