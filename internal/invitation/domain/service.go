package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/pkg/errs"
)

type SendInvitationRequest struct {
	Email    string
	TenantID snowflake.ID
	UnitID   snowflake.ID
	OwnerID  snowflake.ID
}

type Service interface {
	// SendInvitation stores a new invitation and emits the invitation event.
	// It returns the invitation code.
	SendInvitation(ctx context.Context, req SendInvitationRequest) (string, error)
	FindByCode(ctx context.Context, code string) (Invitation, error)
	// Accept marks a sent invitation accepted. Expired invitations are
	// flipped to expired and rejected.
	Accept(ctx context.Context, code string) (Invitation, error)
	// Cancel withdraws a sent invitation. Unknown or already closed
	// invitations are left as they are.
	Cancel(ctx context.Context, code string) error
}

var (
	ErrInvalidEmail  = fmt.Errorf("%w: invalid_email", errs.ErrInvalidRequest)
	ErrInvalidTarget = fmt.Errorf("%w: invalid_invitation_target", errs.ErrInvalidRequest)
	ErrInvalidCode   = fmt.Errorf("%w: invalid_code", errs.ErrInvalidRequest)

	ErrInvitationNotFound = fmt.Errorf("%w: invitation", errs.ErrNotFound)
	ErrInvitationExpired  = errors.New("invitation_expired")
	ErrInvitationClosed   = errors.New("invitation_closed")
)
