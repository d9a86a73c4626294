package observability

import (
	"github.com/smallbiznis/tenantflow/internal/config"
	"github.com/smallbiznis/tenantflow/internal/observability/logger"
	"github.com/smallbiznis/tenantflow/internal/observability/metrics"
	"github.com/smallbiznis/tenantflow/pkg/telemetry"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		logger.New,
		provideOnboardingMetrics,
	),
	telemetry.Module,
	fx.Invoke(ensureTracingProvider),
)

func ensureTracingProvider(_ *sdktrace.TracerProvider) {}

func provideOnboardingMetrics(cfg config.Config) *metrics.OnboardingMetrics {
	return metrics.OnboardingWithConfig(metrics.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	})
}
