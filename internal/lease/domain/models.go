package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type LeaseStatus string

const (
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusTerminated LeaseStatus = "terminated"
	LeaseStatusExpired    LeaseStatus = "expired"
)

// MaxPaymentDay keeps the rent due date valid in every month.
const MaxPaymentDay = 28

type Lease struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	UnitID          snowflake.ID `gorm:"not null;index" json:"unit_id"`
	StartDate       time.Time    `gorm:"column:start_date;not null" json:"start_date"`
	EndDate         time.Time    `gorm:"column:end_date;not null" json:"end_date"`
	RentAmount      int64        `gorm:"column:rent_amount;not null" json:"rent_amount"`
	SecurityDeposit *int64       `gorm:"column:security_deposit" json:"security_deposit,omitempty"`
	Status          LeaseStatus  `gorm:"type:text;not null" json:"status"`
	PaymentDay      int          `gorm:"column:payment_day;not null" json:"payment_day"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Lease) TableName() string { return "leases" }
