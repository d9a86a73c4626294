package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/tenantflow/internal/billing/adapters/fake"
	billingservice "github.com/smallbiznis/tenantflow/internal/billing/service"
	"github.com/smallbiznis/tenantflow/internal/clock"
	"github.com/smallbiznis/tenantflow/internal/config"
	"github.com/smallbiznis/tenantflow/internal/events"
	"github.com/smallbiznis/tenantflow/internal/events/outbox"
	invitationdomain "github.com/smallbiznis/tenantflow/internal/invitation/domain"
	invitationrepo "github.com/smallbiznis/tenantflow/internal/invitation/repository"
	invitationservice "github.com/smallbiznis/tenantflow/internal/invitation/service"
	leasedomain "github.com/smallbiznis/tenantflow/internal/lease/domain"
	leaserepo "github.com/smallbiznis/tenantflow/internal/lease/repository"
	leaseservice "github.com/smallbiznis/tenantflow/internal/lease/service"
	"github.com/smallbiznis/tenantflow/internal/observability/metrics"
	"github.com/smallbiznis/tenantflow/internal/onboarding/domain"
	"github.com/smallbiznis/tenantflow/internal/onboarding/repository"
	"github.com/smallbiznis/tenantflow/internal/onboarding/service"
	paymentaccountdomain "github.com/smallbiznis/tenantflow/internal/paymentaccount/domain"
	paymentaccountrepo "github.com/smallbiznis/tenantflow/internal/paymentaccount/repository"
	paymentaccountservice "github.com/smallbiznis/tenantflow/internal/paymentaccount/service"
	propertydomain "github.com/smallbiznis/tenantflow/internal/property/domain"
	propertyrepo "github.com/smallbiznis/tenantflow/internal/property/repository"
	tenantdomain "github.com/smallbiznis/tenantflow/internal/tenant/domain"
	tenantrepo "github.com/smallbiznis/tenantflow/internal/tenant/repository"
	tenantservice "github.com/smallbiznis/tenantflow/internal/tenant/service"
	"github.com/smallbiznis/tenantflow/pkg/db"
	"github.com/smallbiznis/tenantflow/pkg/errs"
	"github.com/smallbiznis/tenantflow/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	billing  *fake.Client
	tenants  tenantdomain.Service
	svc      domain.Service
	ownerID  snowflake.ID
	unitID   snowflake.ID
	property snowflake.ID
}

type envOption func(*env)

// withTenants swaps the tenant service, used to intercept step 1.
func withTenants(wrap func(tenantdomain.Service) tenantdomain.Service) envOption {
	return func(e *env) { e.tenants = wrap(e.tenants) }
}

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&tenantdomain.Tenant{},
		&propertydomain.Property{},
		&propertydomain.Unit{},
		&leasedomain.Lease{},
		&paymentaccountdomain.ConnectedAccount{},
		&invitationdomain.Invitation{},
		&outbox.OutboxEvent{},
		&domain.OnboardingRun{},
	))

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	e := &env{
		db:       conn,
		node:     node,
		clock:    clock.NewFakeClock(time.Date(2024, time.December, 20, 12, 0, 0, 0, time.UTC)),
		billing:  fake.NewClient(),
		ownerID:  node.Generate(),
		unitID:   node.Generate(),
		property: node.Generate(),
	}

	now := time.Now().UTC()
	require.NoError(t, conn.Create(&propertydomain.Property{ID: e.property, OwnerID: e.ownerID, Name: "Harbor View", CreatedAt: now}).Error)
	require.NoError(t, conn.Create(&propertydomain.Unit{ID: e.unitID, PropertyID: e.property, UnitNumber: "101", CreatedAt: now}).Error)
	require.NoError(t, conn.Create(&paymentaccountdomain.ConnectedAccount{
		OwnerID:        e.ownerID,
		AccountID:      "acct_owner",
		ChargesEnabled: true,
		PayoutsEnabled: true,
		UpdatedAt:      now,
	}).Error)

	log := zap.NewNop()
	cfg := config.Config{
		Payment:    config.PaymentConfig{Provider: "fake", Currency: "usd"},
		Invitation: config.InvitationConfig{BaseURL: "https://app.example.com"},
	}
	policy := config.NewStaticOnboardingPolicy(config.DefaultOnboardingPolicy())

	e.tenants = tenantservice.New(tenantservice.Params{DB: conn, Log: log, GenID: node, Repo: tenantrepo.Provide(), Clock: e.clock})
	for _, opt := range opts {
		opt(e)
	}

	leases := leaseservice.New(leaseservice.Params{DB: conn, Log: log, GenID: node, Repo: leaserepo.Provide(), PropertyRepo: propertyrepo.Provide(), Clock: e.clock})
	accounts := paymentaccountservice.New(paymentaccountservice.Params{DB: conn, Log: log, Repo: paymentaccountrepo.Provide()})
	billing := billingservice.New(billingservice.Params{Log: log, Cfg: cfg, Client: e.billing})
	invitations := invitationservice.New(invitationservice.Params{
		DB:        conn,
		Log:       log,
		GenID:     node,
		Repo:      invitationrepo.Provide(),
		Cfg:       cfg,
		Clock:     e.clock,
		Tokens:    token.NewGenerator(),
		Publisher: outbox.NewOutboxPublisher(conn, node),
	})

	e.svc = service.New(service.Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Repo:        repository.Provide(),
		Clock:       e.clock,
		Policy:      policy,
		Metrics:     metrics.NewOnboardingMetricsWithRegisterer(prometheus.NewRegistry(), metrics.Config{Environment: "test"}),
		Tenants:     e.tenants,
		Leases:      leases,
		Accounts:    accounts,
		Billing:     billing,
		Invitations: invitations,
	})
	return e
}

func (e *env) request() domain.InviteTenantRequest {
	return domain.InviteTenantRequest{
		Email:          "Renter@Example.com",
		FirstName:      "Rita",
		LastName:       "Renter",
		Phone:          "+15550199",
		PropertyID:     e.property.String(),
		UnitID:         e.unitID.String(),
		LeaseStartDate: "2025-01-01",
		RentAmount:     150000,
	}
}

func (e *env) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

// assertNothingVisible checks that no onboarding artifact survived.
func (e *env) assertNothingVisible(t *testing.T) {
	t.Helper()
	assert.Zero(t, e.count(t, &tenantdomain.Tenant{}), "tenants")
	assert.Zero(t, e.count(t, &leasedomain.Lease{}), "leases")
	assert.Empty(t, e.billing.Customers(), "billing customers")
	assert.Empty(t, e.billing.ActiveSubscriptions(), "billing subscriptions")
	assert.Zero(t, e.count(t, &outbox.OutboxEvent{}), "events")
}

func requireFailedAt(t *testing.T, err error, step int) *domain.FailedError {
	t.Helper()
	var failed *domain.FailedError
	require.ErrorAs(t, err, &failed)
	require.Equal(t, step, failed.Step)
	require.ErrorIs(t, err, errs.ErrOnboardingFailed)
	require.NotEmpty(t, failed.RunID)
	return failed
}

func TestInviteTenantWithLeaseHappyPath(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	result, err := e.svc.InviteTenantWithLease(ctx, e.ownerID.String(), e.request())
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, domain.MessageSuccess, result.Message)

	tenantID, err := snowflake.ParseString(result.TenantID)
	require.NoError(t, err)
	var tenant tenantdomain.Tenant
	require.NoError(t, e.db.First(&tenant, "id = ?", tenantID).Error)
	assert.Equal(t, "renter@example.com", tenant.Email)
	assert.Equal(t, e.ownerID, tenant.OwnerID)

	leaseID, err := snowflake.ParseString(result.LeaseID)
	require.NoError(t, err)
	var lease leasedomain.Lease
	require.NoError(t, e.db.First(&lease, "id = ?", leaseID).Error)
	assert.Equal(t, int64(150000), lease.RentAmount)
	assert.True(t, lease.EndDate.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)), "end date %s", lease.EndDate)
	assert.Equal(t, tenantID, lease.TenantID)

	require.Len(t, e.billing.Customers(), 1)
	subs := e.billing.ActiveSubscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, int64(150000), subs[0].RentAmount)
	assert.Equal(t, "acct_owner", subs[0].ConnectedAccountID)

	var rows []outbox.OutboxEvent
	require.NoError(t, e.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, events.TenantInvitationSentTopic, rows[0].Topic)

	var payload events.InvitationSentPayload
	require.NoError(t, json.Unmarshal(rows[0].Payload, &payload))
	assert.Regexp(t, `^[0-9a-f]{64}$`, payload.InvitationCode)
	assert.Equal(t, result.TenantID, payload.TenantID)
	assert.Equal(t, "renter@example.com", payload.Email)

	var invitation invitationdomain.Invitation
	require.NoError(t, e.db.First(&invitation).Error)
	assert.Equal(t, invitationdomain.StatusSent, invitation.Status)
	assert.Equal(t, payload.InvitationCode, invitation.Code)

	var run domain.OnboardingRun
	require.NoError(t, e.db.First(&run).Error)
	assert.Equal(t, domain.RunStatusCompleted, run.Status)
	assert.Equal(t, 6, run.LastCompletedStep)
	assert.Equal(t, tenantID, run.TenantID)
	assert.NotEmpty(t, run.SubscriptionID)
	assert.NotNil(t, run.FinishedAt)
}

func TestInviteTenantRollsBackWhenOwnerDoesNotOwnUnit(t *testing.T) {
	e := newEnv(t)
	stranger := e.node.Generate()
	require.NoError(t, e.db.Create(&paymentaccountdomain.ConnectedAccount{OwnerID: stranger, AccountID: "acct_x", ChargesEnabled: true, PayoutsEnabled: true, UpdatedAt: time.Now().UTC()}).Error)

	result, err := e.svc.InviteTenantWithLease(context.Background(), stranger.String(), e.request())
	require.False(t, result.Success)
	requireFailedAt(t, err, 2)
	assert.ErrorIs(t, err, errs.ErrNotOwner)
	e.assertNothingVisible(t)
}

func TestInviteTenantRollsBackWhenChargesDisabled(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.db.Model(&paymentaccountdomain.ConnectedAccount{}).
		Where("owner_id = ?", e.ownerID).
		Update("charges_enabled", false).Error)

	result, err := e.svc.InviteTenantWithLease(context.Background(), e.ownerID.String(), e.request())
	require.False(t, result.Success)
	requireFailedAt(t, err, 3)
	assert.ErrorIs(t, err, errs.ErrPaymentAccountNotReady)
	assert.Empty(t, e.billing.Calls(), "processor must not be called")
	e.assertNothingVisible(t)
}

func TestInviteTenantRollsBackWhenCustomerCreationFails(t *testing.T) {
	e := newEnv(t)
	e.billing.FailCreateCustomer = errors.New("processor unavailable")

	result, err := e.svc.InviteTenantWithLease(context.Background(), e.ownerID.String(), e.request())
	require.False(t, result.Success)
	requireFailedAt(t, err, 4)
	assert.ErrorIs(t, err, errs.ErrPaymentProvider)
	e.assertNothingVisible(t)
}

func TestInviteTenantRollsBackWhenSubscriptionFails(t *testing.T) {
	e := newEnv(t)
	e.billing.FailCreateSubscription = errors.New("card_declined")

	result, err := e.svc.InviteTenantWithLease(context.Background(), e.ownerID.String(), e.request())
	require.False(t, result.Success)
	assert.Equal(t, domain.MessageFailure, result.Message)
	requireFailedAt(t, err, 5)
	assert.ErrorIs(t, err, errs.ErrPaymentProvider)

	assert.Equal(t, []string{"create_customer", "create_subscription", "delete_customer"}, e.billing.Calls())
	e.assertNothingVisible(t)

	var run domain.OnboardingRun
	require.NoError(t, e.db.First(&run).Error)
	assert.Equal(t, domain.RunStatusCompensated, run.Status)
	assert.Equal(t, 5, run.FailedStep)

	var records []domain.CompensationRecord
	require.NoError(t, json.Unmarshal(run.Compensations, &records))
	require.Len(t, records, 3)
	assert.Equal(t, domain.StepCreateCustomer, records[0].Name)
	assert.Equal(t, domain.StepCreateLease, records[1].Name)
	assert.Equal(t, domain.StepCreateTenant, records[2].Name)
	for _, record := range records {
		assert.True(t, record.OK, record.Name)
	}
}

func TestInviteTenantRollsBackWhenInvitationCannotBeStored(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.db.Migrator().DropTable(&invitationdomain.Invitation{}))

	result, err := e.svc.InviteTenantWithLease(context.Background(), e.ownerID.String(), e.request())
	require.False(t, result.Success)
	requireFailedAt(t, err, 6)
	assert.ErrorIs(t, err, errs.ErrPersistence)

	calls := e.billing.Calls()
	assert.Equal(t, []string{"create_customer", "create_subscription", "cancel_subscription", "delete_customer"}, calls)
	e.assertNothingVisible(t)
}

func TestCompensationFailureIsRecordedForCleanup(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.billing.FailCreateSubscription = errors.New("card_declined")
	e.billing.FailDeleteCustomer = errors.New("processor timeout")

	result, err := e.svc.InviteTenantWithLease(ctx, e.ownerID.String(), e.request())
	require.False(t, result.Success)
	failed := requireFailedAt(t, err, 5)

	assert.Zero(t, e.count(t, &tenantdomain.Tenant{}), "remaining compensations still run")
	assert.Zero(t, e.count(t, &leasedomain.Lease{}))
	assert.Len(t, e.billing.Customers(), 1)

	run, err := e.svc.GetRun(ctx, failed.RunID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompensationFailed, run.Status)
	assert.NotEmpty(t, run.CustomerID)

	pending, err := e.svc.PendingCleanup(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, failed.RunID, pending[0].RunID)
}

type cancellingTenants struct {
	tenantdomain.Service
	cancel context.CancelFunc
}

func (c cancellingTenants) Create(ctx context.Context, req tenantdomain.CreateTenantRequest) (tenantdomain.Tenant, error) {
	tenant, err := c.Service.Create(ctx, req)
	c.cancel()
	return tenant, err
}

func TestCancellationBetweenStepsCompensates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newEnv(t, withTenants(func(inner tenantdomain.Service) tenantdomain.Service {
		return cancellingTenants{Service: inner, cancel: cancel}
	}))

	result, err := e.svc.InviteTenantWithLease(ctx, e.ownerID.String(), e.request())
	require.False(t, result.Success)
	requireFailedAt(t, err, 2)
	assert.ErrorIs(t, err, context.Canceled)
	e.assertNothingVisible(t)

	var run domain.OnboardingRun
	require.NoError(t, e.db.First(&run).Error)
	assert.Equal(t, domain.RunStatusCompensated, run.Status)
}

func TestInviteTenantRejectsInvalidRequests(t *testing.T) {
	e := newEnv(t)

	cases := map[string]func(*domain.InviteTenantRequest){
		"missing email":      func(r *domain.InviteTenantRequest) { r.Email = "" },
		"malformed email":    func(r *domain.InviteTenantRequest) { r.Email = "renter.example.com" },
		"empty email domain": func(r *domain.InviteTenantRequest) { r.Email = "renter@.com" },
		"missing unit":       func(r *domain.InviteTenantRequest) { r.UnitID = "" },
		"zero rent":          func(r *domain.InviteTenantRequest) { r.RentAmount = 0 },
		"bad start date":     func(r *domain.InviteTenantRequest) { r.LeaseStartDate = "01/01/2025" },
		"end before start":   func(r *domain.InviteTenantRequest) { r.LeaseEndDate = "2024-12-31" },
		"negative deposit":   func(r *domain.InviteTenantRequest) { d := int64(-5); r.SecurityDeposit = &d },
		"unparsable unit id": func(r *domain.InviteTenantRequest) { r.UnitID = "unit-101" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := e.request()
			mutate(&req)

			result, err := e.svc.InviteTenantWithLease(context.Background(), e.ownerID.String(), req)
			require.False(t, result.Success)
			requireFailedAt(t, err, 0)
			assert.ErrorIs(t, err, errs.ErrInvalidRequest)
		})
	}

	_, err := e.svc.InviteTenantWithLease(context.Background(), "not-an-id", e.request())
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)

	assert.Zero(t, e.count(t, &domain.OnboardingRun{}))
	e.assertNothingVisible(t)
}

func TestFailureMessageDoesNotNameStep(t *testing.T) {
	e := newEnv(t)
	e.billing.FailCreateSubscription = errors.New("card_declined")

	result, err := e.svc.InviteTenantWithLease(context.Background(), e.ownerID.String(), e.request())
	require.Error(t, err)
	for _, name := range []string{domain.StepCreateSubscription, "subscription", "step"} {
		assert.False(t, strings.Contains(strings.ToLower(result.Message), name), "message %q mentions %q", result.Message, name)
		assert.False(t, strings.Contains(strings.ToLower(err.Error()), name), "error %q mentions %q", err.Error(), name)
	}
}

func TestStaleRunningRunIsPendingCleanup(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	stale := domain.OnboardingRun{
		ID:        e.node.Generate(),
		RunID:     "01STALE",
		OwnerID:   e.ownerID,
		Email:     "stale@example.com",
		Status:    domain.RunStatusRunning,
		StartedAt: e.clock.Now().Add(-time.Hour),
		UpdatedAt: e.clock.Now().Add(-time.Hour),
	}
	require.NoError(t, e.db.Create(&stale).Error)

	_, err := e.svc.InviteTenantWithLease(ctx, e.ownerID.String(), e.request())
	require.NoError(t, err)

	pending, err := e.svc.PendingCleanup(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "01STALE", pending[0].RunID)
}
