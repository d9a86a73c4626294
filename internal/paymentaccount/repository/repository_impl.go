package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/internal/paymentaccount/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (*domain.ConnectedAccount, error) {
	var account domain.ConnectedAccount
	err := db.WithContext(ctx).Raw(
		`SELECT owner_id, account_id, charges_enabled, payouts_enabled, updated_at
		 FROM connected_accounts WHERE owner_id = ?`,
		ownerID,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.OwnerID == 0 {
		return nil, nil
	}
	return &account, nil
}
