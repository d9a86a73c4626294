package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/internal/lease/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, lease *domain.Lease) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO leases (id, tenant_id, unit_id, start_date, end_date, rent_amount, security_deposit,
			status, payment_day, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lease.ID,
		lease.TenantID,
		lease.UnitID,
		lease.StartDate,
		lease.EndDate,
		lease.RentAmount,
		lease.SecurityDeposit,
		lease.Status,
		lease.PaymentDay,
		lease.CreatedAt,
		lease.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Lease, error) {
	var lease domain.Lease
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&lease).Error
	if err != nil {
		return nil, err
	}
	if lease.ID == 0 {
		return nil, nil
	}
	return &lease, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM leases WHERE id = ?`, id)
	return result.RowsAffected, result.Error
}
