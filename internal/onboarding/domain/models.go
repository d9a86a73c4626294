package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type RunStatus string

const (
	RunStatusRunning            RunStatus = "running"
	RunStatusCompleted          RunStatus = "completed"
	RunStatusCompensated        RunStatus = "compensated"
	RunStatusCompensationFailed RunStatus = "compensation_failed"
)

// Step names in execution order.
const (
	StepCreateTenant       = "create_tenant"
	StepCreateLease        = "create_lease"
	StepVerifyAccount      = "verify_payment_account"
	StepCreateCustomer     = "create_billing_customer"
	StepCreateSubscription = "create_billing_subscription"
	StepSendInvitation     = "send_invitation"
)

// OnboardingRun is the durable log of one saga execution. Resources that a
// failed compensation left behind can be found from its ids.
type OnboardingRun struct {
	ID                snowflake.ID   `gorm:"primaryKey" json:"id"`
	RunID             string         `gorm:"column:run_id;not null;uniqueIndex" json:"run_id"`
	OwnerID           snowflake.ID   `gorm:"not null;index" json:"owner_id"`
	Email             string         `gorm:"not null" json:"email"`
	TenantID          snowflake.ID   `gorm:"column:tenant_id" json:"tenant_id,omitempty"`
	LeaseID           snowflake.ID   `gorm:"column:lease_id" json:"lease_id,omitempty"`
	ConnectedAccount  string         `gorm:"column:connected_account_id" json:"connected_account_id,omitempty"`
	CustomerID        string         `gorm:"column:billing_customer_id" json:"billing_customer_id,omitempty"`
	SubscriptionID    string         `gorm:"column:billing_subscription_id" json:"billing_subscription_id,omitempty"`
	InvitationCode    string         `gorm:"column:invitation_code" json:"-"`
	LastCompletedStep int            `gorm:"column:last_completed_step;not null;default:0" json:"last_completed_step"`
	Status            RunStatus      `gorm:"type:text;not null;index" json:"status"`
	FailedStep        int            `gorm:"column:failed_step;not null;default:0" json:"failed_step,omitempty"`
	Error             *string        `gorm:"column:error" json:"error,omitempty"`
	Compensations     datatypes.JSON `gorm:"column:compensations" json:"compensations,omitempty"`
	StartedAt         time.Time      `gorm:"not null" json:"started_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
	FinishedAt        *time.Time     `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

func (OnboardingRun) TableName() string { return "onboarding_runs" }

// CompensationRecord is one entry of OnboardingRun.Compensations.
type CompensationRecord struct {
	Step  int    `json:"step"`
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Progress carries the resource ids known after a step completed.
type Progress struct {
	LastCompletedStep int
	TenantID          snowflake.ID
	LeaseID           snowflake.ID
	ConnectedAccount  string
	CustomerID        string
	SubscriptionID    string
	InvitationCode    string
}
