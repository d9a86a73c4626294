package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invitation *Invitation) error
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Invitation, error)
	// UpdateStatus moves an invitation from one status to another and reports
	// how many rows changed.
	UpdateStatus(ctx context.Context, db *gorm.DB, code string, from, to InvitationStatus, now time.Time) (int64, error)
}
