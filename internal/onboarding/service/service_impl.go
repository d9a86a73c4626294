package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/smallbiznis/tenantflow/internal/billing/domain"
	"github.com/smallbiznis/tenantflow/internal/clock"
	"github.com/smallbiznis/tenantflow/internal/config"
	invitationdomain "github.com/smallbiznis/tenantflow/internal/invitation/domain"
	leasedomain "github.com/smallbiznis/tenantflow/internal/lease/domain"
	"github.com/smallbiznis/tenantflow/internal/observability/metrics"
	"github.com/smallbiznis/tenantflow/internal/onboarding/domain"
	"github.com/smallbiznis/tenantflow/internal/onboarding/saga"
	paymentaccountdomain "github.com/smallbiznis/tenantflow/internal/paymentaccount/domain"
	tenantdomain "github.com/smallbiznis/tenantflow/internal/tenant/domain"
	"github.com/smallbiznis/tenantflow/pkg/errs"
	"github.com/smallbiznis/tenantflow/pkg/log/ctxlogger"
	"github.com/smallbiznis/tenantflow/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	tracerName = "github.com/smallbiznis/tenantflow/internal/onboarding"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	Clock       clock.Clock
	Policy      *config.OnboardingPolicyHolder
	Metrics     *metrics.OnboardingMetrics `optional:"true"`
	Tenants     tenantdomain.Service
	Leases      leasedomain.Service
	Accounts    paymentaccountdomain.Service
	Billing     billingdomain.Service
	Invitations invitationdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	clock       clock.Clock
	policy      *config.OnboardingPolicyHolder
	metrics     *metrics.OnboardingMetrics
	tracer      trace.Tracer
	tenants     tenantdomain.Service
	leases      leasedomain.Service
	accounts    paymentaccountdomain.Service
	billing     billingdomain.Service
	invitations invitationdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("onboarding.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		clock:       p.Clock,
		policy:      p.Policy,
		metrics:     p.Metrics,
		tracer:      otel.Tracer(tracerName),
		tenants:     p.Tenants,
		leases:      p.Leases,
		accounts:    p.Accounts,
		billing:     p.Billing,
		invitations: p.Invitations,
	}
}

// validated is the request after parsing.
type validated struct {
	ownerID         snowflake.ID
	email           string
	firstName       string
	lastName        string
	phone           string
	propertyID      snowflake.ID
	unitID          snowflake.ID
	startDate       time.Time
	endDate         *time.Time
	rentAmount      int64
	securityDeposit *int64
}

func (s *Service) InviteTenantWithLease(ctx context.Context, ownerID string, req domain.InviteTenantRequest) (domain.Result, error) {
	runID := correlation.NewID()
	ctx = correlation.WithDefault(ctx, runID)

	ctx, span := s.tracer.Start(ctx, "onboarding.invite_tenant_with_lease", trace.WithAttributes(
		attribute.String("onboarding.run_id", runID),
	))
	defer span.End()

	log := ctxlogger.WithContext(ctx, s.log).With(zap.String("run_id", runID))

	input, err := parseRequest(ownerID, req)
	if err != nil {
		s.metrics.IncRun(metrics.OnboardingOutcomeRejected)
		span.SetStatus(codes.Error, "invalid request")
		log.Info("onboarding request rejected", zap.Error(err))
		return domain.Result{Success: false, Message: domain.MessageInvalid}, &domain.FailedError{RunID: runID, Step: 0, Cause: err}
	}

	policy := s.policy.Get()
	now := s.clock.Now().UTC()
	run := domain.OnboardingRun{
		ID:        s.genID.Generate(),
		RunID:     runID,
		OwnerID:   input.ownerID,
		Email:     input.email,
		Status:    domain.RunStatusRunning,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &run); err != nil {
		cause := errs.Persistence("insert onboarding run", err)
		s.metrics.IncRun(metrics.OnboardingOutcomeRejected)
		span.RecordError(cause)
		span.SetStatus(codes.Error, "run log unavailable")
		log.Error("onboarding run log unavailable", zap.Error(err))
		return domain.Result{Success: false, Message: domain.MessageFailure}, &domain.FailedError{RunID: runID, Step: 0, Cause: cause}
	}

	state := &runState{runID: runID}
	observer := &runObserver{service: s, log: log, state: state}
	runner := saga.NewRunner(policy.StepTimeout, policy.CompensationTimeout, observer)

	log.Info("onboarding started",
		zap.String("owner_id", input.ownerID.String()),
		zap.String("unit_id", input.unitID.String()),
	)

	runErr := runner.Run(ctx, s.steps(input, state))
	if runErr == nil {
		s.finish(ctx, log, runID, domain.RunStatusCompleted, 0, nil, nil)
		s.metrics.IncRun(metrics.OnboardingOutcomeCompleted)
		log.Info("onboarding completed",
			zap.String("tenant_id", state.progress.TenantID.String()),
			zap.String("lease_id", state.progress.LeaseID.String()),
		)
		return domain.Result{
			Success:  true,
			TenantID: state.progress.TenantID.String(),
			LeaseID:  state.progress.LeaseID.String(),
			Message:  domain.MessageSuccess,
		}, nil
	}

	var stepErr *saga.StepError
	if !errors.As(runErr, &stepErr) {
		stepErr = &saga.StepError{Err: runErr}
	}

	status := domain.RunStatusCompensated
	outcome := metrics.OnboardingOutcomeCompensated
	if stepErr.CompensationFailed() {
		status = domain.RunStatusCompensationFailed
		outcome = metrics.OnboardingOutcomeCompensationFailed
	}

	errText := stepErr.Err.Error()
	s.finish(ctx, log, runID, status, stepErr.Step, &errText, compensationRecords(stepErr.Compensations))
	s.metrics.IncRun(outcome)

	span.RecordError(stepErr.Err)
	span.SetStatus(codes.Error, "onboarding failed")
	span.SetAttributes(attribute.Int("onboarding.failed_step", stepErr.Step))

	log.Error("onboarding failed",
		zap.Int("step", stepErr.Step),
		zap.String("step_name", stepErr.Name),
		zap.String("status", string(status)),
		zap.Error(stepErr.Err),
	)

	return domain.Result{Success: false, Message: domain.MessageFailure}, &domain.FailedError{
		RunID: runID,
		Step:  stepErr.Step,
		Cause: stepErr.Err,
	}
}

func (s *Service) PendingCleanup(ctx context.Context, limit int) ([]domain.OnboardingRun, error) {
	if limit <= 0 {
		limit = 100
	}
	staleBefore := s.clock.Now().UTC().Add(-s.policy.Get().StaleRunAfter)
	runs, err := s.repo.ListPendingCleanup(ctx, s.db, staleBefore, limit)
	if err != nil {
		return nil, errs.Persistence("list pending cleanup", err)
	}
	return runs, nil
}

func (s *Service) GetRun(ctx context.Context, runID string) (domain.OnboardingRun, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return domain.OnboardingRun{}, fmt.Errorf("%w: run_id", errs.ErrInvalidRequest)
	}
	run, err := s.repo.FindByRunID(ctx, s.db, runID)
	if err != nil {
		return domain.OnboardingRun{}, errs.Persistence("find onboarding run", err)
	}
	if run == nil {
		return domain.OnboardingRun{}, errs.ErrNotFound
	}
	return *run, nil
}

// finish writes the terminal run state. The caller may already be cancelled,
// so the write is detached from its context.
func (s *Service) finish(ctx context.Context, log *zap.Logger, runID string, status domain.RunStatus, failedStep int, errText *string, records []domain.CompensationRecord) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.policy.Get().CompensationTimeout)
	defer cancel()

	if err := s.repo.Finish(writeCtx, s.db, runID, status, failedStep, errText, records, s.clock.Now().UTC()); err != nil {
		log.Warn("failed to finish onboarding run log", zap.Error(err))
	}
}

func compensationRecords(outcomes []saga.CompensationOutcome) []domain.CompensationRecord {
	records := make([]domain.CompensationRecord, 0, len(outcomes))
	for _, outcome := range outcomes {
		record := domain.CompensationRecord{Step: outcome.Step, Name: outcome.Name, OK: outcome.Err == nil}
		if outcome.Err != nil {
			record.Error = outcome.Err.Error()
		}
		records = append(records, record)
	}
	return records
}
