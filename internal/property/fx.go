package property

import (
	"github.com/smallbiznis/tenantflow/internal/property/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("property.repository",
	fx.Provide(repository.Provide),
)
