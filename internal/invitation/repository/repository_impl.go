package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/tenantflow/internal/invitation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invitation *domain.Invitation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invitations (id, email, unit_id, owner_id, tenant_id, code, url, status, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invitation.ID,
		invitation.Email,
		invitation.UnitID,
		invitation.OwnerID,
		invitation.TenantID,
		invitation.Code,
		invitation.URL,
		invitation.Status,
		invitation.ExpiresAt,
		invitation.CreatedAt,
		invitation.UpdatedAt,
	).Error
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := db.WithContext(ctx).
		Where("code = ?", code).
		Limit(1).
		Find(&invitation).Error
	if err != nil {
		return nil, err
	}
	if invitation.ID == 0 {
		return nil, nil
	}
	return &invitation, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, code string, from, to domain.InvitationStatus, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE invitations SET status = ?, updated_at = ? WHERE code = ? AND status = ?`,
		to,
		now,
		code,
		from,
	)
	return result.RowsAffected, result.Error
}
