// Package saga runs an ordered list of steps and undoes the completed ones
// when a later step fails.
package saga

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/smallbiznis/tenantflow/internal/onboarding/saga"

// Step is one unit of work. Compensate may be nil when the step leaves
// nothing behind.
type Step struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Observer receives step and compensation outcomes. Steps are numbered from 1.
type Observer interface {
	StepCompleted(ctx context.Context, step int, name string, elapsed time.Duration)
	StepFailed(ctx context.Context, step int, name string, err error)
	Compensated(ctx context.Context, step int, name string, err error)
}

type CompensationOutcome struct {
	Step int
	Name string
	Err  error
}

// StepError reports the first failing step together with every compensation
// that ran because of it.
type StepError struct {
	Step          int
	Name          string
	Err           error
	Compensations []CompensationOutcome
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// CompensationFailed reports whether any compensation returned an error.
func (e *StepError) CompensationFailed() bool {
	for _, outcome := range e.Compensations {
		if outcome.Err != nil {
			return true
		}
	}
	return false
}

type Runner struct {
	stepTimeout         time.Duration
	compensationTimeout time.Duration
	observer            Observer
	tracer              trace.Tracer
}

func NewRunner(stepTimeout, compensationTimeout time.Duration, observer Observer) *Runner {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Runner{
		stepTimeout:         stepTimeout,
		compensationTimeout: compensationTimeout,
		observer:            observer,
		tracer:              otel.Tracer(tracerName),
	}
}

// Run executes steps in order. A started step always runs to completion under
// its own timeout; cancellation of ctx is only honoured between steps. On the
// first failure the completed steps are compensated in reverse order and a
// *StepError is returned.
func (r *Runner) Run(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		number := i + 1

		if err := ctx.Err(); err != nil {
			r.observer.StepFailed(ctx, number, step.Name, err)
			return r.unwind(ctx, steps[:i], number, step.Name, err)
		}

		started := time.Now()
		if err := r.execute(ctx, number, step); err != nil {
			r.observer.StepFailed(ctx, number, step.Name, err)
			return r.unwind(ctx, steps[:i], number, step.Name, err)
		}
		r.observer.StepCompleted(ctx, number, step.Name, time.Since(started))
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, number int, step Step) (err error) {
	stepCtx, cancel := withTimeout(context.WithoutCancel(ctx), r.stepTimeout)
	defer cancel()

	stepCtx, span := r.tracer.Start(stepCtx, "saga.step."+step.Name, trace.WithAttributes(
		attribute.Int("saga.step", number),
		attribute.String("saga.step_name", step.Name),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return step.Execute(stepCtx)
}

func (r *Runner) unwind(ctx context.Context, completed []Step, failedStep int, failedName string, cause error) error {
	stepErr := &StepError{Step: failedStep, Name: failedName, Err: cause}

	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}
		number := i + 1
		err := r.compensate(ctx, number, step)
		r.observer.Compensated(ctx, number, step.Name, err)
		stepErr.Compensations = append(stepErr.Compensations, CompensationOutcome{Step: number, Name: step.Name, Err: err})
	}

	return stepErr
}

func (r *Runner) compensate(ctx context.Context, number int, step Step) (err error) {
	compCtx, cancel := withTimeout(context.WithoutCancel(ctx), r.compensationTimeout)
	defer cancel()

	compCtx, span := r.tracer.Start(compCtx, "saga.compensate."+step.Name, trace.WithAttributes(
		attribute.Int("saga.step", number),
		attribute.String("saga.step_name", step.Name),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("compensation panicked: %v", recovered)
		}
	}()

	return step.Compensate(compCtx)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

type noopObserver struct{}

func (noopObserver) StepCompleted(context.Context, int, string, time.Duration) {}
func (noopObserver) StepFailed(context.Context, int, string, error)            {}
func (noopObserver) Compensated(context.Context, int, string, error)           {}
