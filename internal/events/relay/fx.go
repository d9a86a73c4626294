package relay

import (
	"context"
	"time"

	"github.com/smallbiznis/tenantflow/internal/config"
	"github.com/smallbiznis/tenantflow/internal/events/bus"
	"github.com/smallbiznis/tenantflow/internal/events/outbox"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the transactional outbox publisher and the relay that drains it.
var Module = fx.Module("events.relay",
	fx.Provide(outbox.NewOutboxPublisher),
	fx.Provide(outbox.ProvidePublisher),
	fx.Provide(outbox.NewStore),
	fx.Provide(bus.NewRedisClient),
	fx.Provide(bus.ProvideSink),
	fx.Provide(NewLocker),
	fx.Provide(OptionsFromConfig),
	fx.Provide(New),
)

// Worker polls the outbox for the lifetime of the app. One-shot commands
// leave it out and rely on the next serving process to drain their events.
var Worker = fx.Module("events.relay.worker",
	fx.Invoke(runRelay),
)

func runRelay(lc fx.Lifecycle, relay *Relay, cfg config.Config) {
	interval := cfg.Outbox.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
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
					if _, err := relay.ProcessPending(ctx); err != nil && ctx.Err() == nil {
						relay.log.Error("outbox relay poll failed", zap.Error(err))
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
