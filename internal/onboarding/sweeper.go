package onboarding

import (
	"context"
	"time"

	"github.com/smallbiznis/tenantflow/internal/config"
	"github.com/smallbiznis/tenantflow/internal/observability/metrics"
	"github.com/smallbiznis/tenantflow/internal/onboarding/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sweepBatchSize = 200

// Sweeper reports onboarding runs that may have left resources behind. It
// does not delete anything; operators act on the logged ids.
type Sweeper struct {
	svc     domain.Service
	metrics *metrics.OnboardingMetrics
	log     *zap.Logger
}

type SweeperParams struct {
	fx.In

	Service domain.Service
	Metrics *metrics.OnboardingMetrics `optional:"true"`
	Log     *zap.Logger
}

func NewSweeper(p SweeperParams) *Sweeper {
	return &Sweeper{
		svc:     p.Service,
		metrics: p.Metrics,
		log:     p.Log.Named("onboarding.sweeper"),
	}
}

// SweepOnce logs every pending run and returns how many were found.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	runs, err := s.svc.PendingCleanup(ctx, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	s.metrics.SetCleanupPending(len(runs))
	for _, run := range runs {
		s.log.Warn("onboarding run needs cleanup",
			zap.String("run_id", run.RunID),
			zap.String("status", string(run.Status)),
			zap.Int("failed_step", run.FailedStep),
			zap.Int("last_completed_step", run.LastCompletedStep),
			zap.String("tenant_id", run.TenantID.String()),
			zap.String("lease_id", run.LeaseID.String()),
			zap.String("billing_customer_id", run.CustomerID),
			zap.String("billing_subscription_id", run.SubscriptionID),
		)
	}
	return len(runs), nil
}

var Worker = fx.Module("onboarding.sweeper",
	fx.Provide(NewSweeper),
	fx.Invoke(runSweeper),
)

func runSweeper(lc fx.Lifecycle, cfg config.Config, sweeper *Sweeper) {
	interval := cfg.CleanupSweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	var (
		cancel context.CancelFunc
		done   = make(chan struct{})
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			go func() {
				defer close(done)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				for {
					if _, err := sweeper.SweepOnce(ctx); err != nil && ctx.Err() == nil {
						sweeper.log.Error("onboarding cleanup sweep failed", zap.Error(err))
					}
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel == nil {
				return nil
			}
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}
