package relay

import (
	"context"
	"time"

	"github.com/smallbiznis/tenantflow/internal/config"
	"github.com/smallbiznis/tenantflow/internal/events/bus"
	"github.com/smallbiznis/tenantflow/internal/events/outbox"
	"github.com/smallbiznis/tenantflow/pkg/telemetry"
	"go.uber.org/zap"
)

const lockKey = "tenantflow:outbox:relay"

// Relay forwards pending outbox rows to the event bus. Delivery is at least
// once: a row is marked published only after the sink accepted it.
type Relay struct {
	store     *outbox.Store
	sink      bus.Sink
	locker    *Locker
	metrics   *telemetry.Metrics
	log       *zap.Logger
	batchSize int
	lockTTL   time.Duration
	now       func() time.Time
}

type Options struct {
	BatchSize int
	LockTTL   time.Duration
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		BatchSize: cfg.Outbox.BatchSize,
		LockTTL:   cfg.Outbox.LockTTL,
	}
}

func New(store *outbox.Store, sink bus.Sink, locker *Locker, metrics *telemetry.Metrics, log *zap.Logger, opts Options) *Relay {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}
	return &Relay{
		store:     store,
		sink:      sink,
		locker:    locker,
		metrics:   metrics,
		log:       log.Named("events.relay"),
		batchSize: opts.BatchSize,
		lockTTL:   opts.LockTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProcessPending drains one batch and returns how many rows were published.
func (r *Relay) ProcessPending(ctx context.Context) (int, error) {
	if r.locker != nil {
		lease, err := r.locker.Acquire(ctx, lockKey, r.lockTTL)
		if err != nil {
			return 0, err
		}
		if lease == nil {
			r.log.Debug("relay lock held by another replica")
			return 0, nil
		}
		defer func() {
			if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
				r.log.Warn("failed to release relay lock", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	rows, err := r.store.FetchPending(ctx, r.batchSize)
	if err != nil {
		r.metrics.RecordOutboxBatch(telemetry.OutboxStatusFailed, time.Since(start))
		return 0, err
	}

	published := 0
	for _, row := range rows {
		if err := r.sink.Publish(ctx, row.Topic, []byte(row.Payload)); err != nil {
			r.metrics.RecordOutboxEvent(row.Topic, telemetry.OutboxStatusFailed)
			r.log.Warn("failed to publish outbox event",
				zap.String("event_id", row.ID.String()),
				zap.String("topic", row.Topic),
				zap.Int("attempts", row.Attempts+1),
				zap.Error(err),
			)
			if markErr := r.store.MarkFailed(ctx, row.ID, err.Error()); markErr != nil {
				r.log.Error("failed to record outbox failure", zap.String("event_id", row.ID.String()), zap.Error(markErr))
			}
			continue
		}

		if err := r.store.MarkPublished(ctx, row.ID, r.now()); err != nil {
			// The event will be sent again on the next poll.
			r.log.Error("failed to mark outbox event published", zap.String("event_id", row.ID.String()), zap.Error(err))
			continue
		}
		r.metrics.RecordOutboxEvent(row.Topic, telemetry.OutboxStatusPublished)
		published++
	}

	status := telemetry.OutboxStatusPublished
	if published < len(rows) {
		status = telemetry.OutboxStatusFailed
	}
	r.metrics.RecordOutboxBatch(status, time.Since(start))

	if backlog, err := r.store.CountPending(ctx); err == nil {
		r.metrics.SetOutboxBacklog(float64(backlog))
	}

	return published, nil
}
