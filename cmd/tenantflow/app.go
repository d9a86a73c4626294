package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/internal/billing"
	"github.com/smallbiznis/tenantflow/internal/clock"
	"github.com/smallbiznis/tenantflow/internal/config"
	"github.com/smallbiznis/tenantflow/internal/events/outbox"
	"github.com/smallbiznis/tenantflow/internal/events/relay"
	"github.com/smallbiznis/tenantflow/internal/invitation"
	invitationdomain "github.com/smallbiznis/tenantflow/internal/invitation/domain"
	"github.com/smallbiznis/tenantflow/internal/lease"
	leasedomain "github.com/smallbiznis/tenantflow/internal/lease/domain"
	"github.com/smallbiznis/tenantflow/internal/observability"
	"github.com/smallbiznis/tenantflow/internal/onboarding"
	onboardingdomain "github.com/smallbiznis/tenantflow/internal/onboarding/domain"
	"github.com/smallbiznis/tenantflow/internal/paymentaccount"
	paymentaccountdomain "github.com/smallbiznis/tenantflow/internal/paymentaccount/domain"
	"github.com/smallbiznis/tenantflow/internal/property"
	propertydomain "github.com/smallbiznis/tenantflow/internal/property/domain"
	"github.com/smallbiznis/tenantflow/internal/tenant"
	tenantdomain "github.com/smallbiznis/tenantflow/internal/tenant/domain"
	"github.com/smallbiznis/tenantflow/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// coreModules is everything the onboarding saga needs, without any
// long-running workers.
func coreModules() fx.Option {
	return fx.Options(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		fx.Invoke(ensureLocalSchema),

		// Functional Domains
		tenant.Module,
		property.Module,
		lease.Module,
		paymentaccount.Module,
		billing.Module,
		relay.Module,
		invitation.Module,
		onboarding.Module,
	)
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// ensureLocalSchema creates the tables on a sqlite database so a local run
// works without a migration step. Other databases are managed externally.
func ensureLocalSchema(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if cfg.DBType != "sqlite" {
		return nil
	}
	log.Info("creating local sqlite schema", zap.String("name", cfg.DBName))
	return conn.AutoMigrate(
		&tenantdomain.Tenant{},
		&propertydomain.Property{},
		&propertydomain.Unit{},
		&leasedomain.Lease{},
		&paymentaccountdomain.ConnectedAccount{},
		&invitationdomain.Invitation{},
		&outbox.OutboxEvent{},
		&onboardingdomain.OnboardingRun{},
	)
}
