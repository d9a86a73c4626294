package events

import (
	"context"

	"gorm.io/gorm"
)

const TenantInvitationSentTopic = "tenant.invitation.sent"

type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// TxPublisher can enlist a publish in an open database transaction so the
// event commits or rolls back together with the caller's rows.
type TxPublisher interface {
	Publisher
	WithTx(tx *gorm.DB) Publisher
}

type InvitationSentPayload struct {
	Email          string `json:"email"`
	TenantID       string `json:"tenant_id"`
	InvitationCode string `json:"invitation_code"`
	InvitationURL  string `json:"invitation_url"`
	ExpiresAt      string `json:"expires_at"`
}
