package onboarding

import (
	"github.com/smallbiznis/tenantflow/internal/onboarding/repository"
	"github.com/smallbiznis/tenantflow/internal/onboarding/service"
	"go.uber.org/fx"
)

var Module = fx.Module("onboarding.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
