package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ConnectedAccount is the owner's account on the payment processor. Rows are
// maintained by the processor onboarding flow and only read here.
type ConnectedAccount struct {
	OwnerID        snowflake.ID `gorm:"primaryKey" json:"owner_id"`
	AccountID      string       `gorm:"column:account_id;not null" json:"account_id"`
	ChargesEnabled bool         `gorm:"column:charges_enabled;not null" json:"charges_enabled"`
	PayoutsEnabled bool         `gorm:"column:payouts_enabled;not null" json:"payouts_enabled"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ConnectedAccount) TableName() string { return "connected_accounts" }

// Ready reports whether the account can both take charges and pay out.
func (a ConnectedAccount) Ready() bool {
	return a.AccountID != "" && a.ChargesEnabled && a.PayoutsEnabled
}
