package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvitationTTL is how long an invitation code stays valid after it is sent.
const InvitationTTL = 7 * 24 * time.Hour

type InvitationStatus string

const (
	StatusSent      InvitationStatus = "sent"
	StatusAccepted  InvitationStatus = "accepted"
	StatusExpired   InvitationStatus = "expired"
	StatusCancelled InvitationStatus = "cancelled"
)

type Invitation struct {
	ID        snowflake.ID     `gorm:"primaryKey" json:"id"`
	Email     string           `gorm:"not null;index" json:"email"`
	UnitID    snowflake.ID     `gorm:"not null;index" json:"unit_id"`
	OwnerID   snowflake.ID     `gorm:"not null;index" json:"owner_id"`
	TenantID  snowflake.ID     `gorm:"not null;index" json:"tenant_id"`
	Code      string           `gorm:"column:code;not null;uniqueIndex" json:"code"`
	URL       string           `gorm:"column:url;not null" json:"invitation_url"`
	Status    InvitationStatus `gorm:"type:text;not null" json:"status"`
	ExpiresAt time.Time        `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Invitation) TableName() string { return "invitations" }

func (i Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
