package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// runObserver mirrors saga progress into the run log, metrics and logs.
type runObserver struct {
	service *Service
	log     *zap.Logger
	state   *runState
}

func (o *runObserver) StepCompleted(ctx context.Context, step int, name string, elapsed time.Duration) {
	o.state.progress.LastCompletedStep = step
	o.service.metrics.ObserveStepDuration(name, elapsed)
	o.log.Debug("onboarding step completed", zap.Int("step", step), zap.String("step_name", name), zap.Duration("elapsed", elapsed))

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.service.policy.Get().StepTimeout)
	defer cancel()
	if err := o.service.repo.UpdateProgress(writeCtx, o.service.db, o.state.runID, o.state.progress, o.service.clock.Now().UTC()); err != nil {
		o.log.Warn("failed to record onboarding progress", zap.Int("step", step), zap.Error(err))
	}
}

func (o *runObserver) StepFailed(ctx context.Context, step int, name string, err error) {
	o.service.metrics.IncStepFailure(step, name)
	o.log.Warn("onboarding step failed", zap.Int("step", step), zap.String("step_name", name), zap.Error(err))
}

func (o *runObserver) Compensated(ctx context.Context, step int, name string, err error) {
	o.service.metrics.IncCompensation(step, name, err)
	if err != nil {
		o.log.Warn("compensation failed, manual cleanup required",
			zap.Int("step", step),
			zap.String("step_name", name),
			zap.String("tenant_id", o.state.progress.TenantID.String()),
			zap.String("lease_id", o.state.progress.LeaseID.String()),
			zap.String("billing_customer_id", o.state.progress.CustomerID),
			zap.String("billing_subscription_id", o.state.progress.SubscriptionID),
			zap.Error(err),
		)
		return
	}
	o.log.Info("compensation applied", zap.Int("step", step), zap.String("step_name", name))
}
