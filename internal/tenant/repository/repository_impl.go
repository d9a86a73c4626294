package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenants (id, owner_id, first_name, last_name, name, email, phone, billing_customer_id,
			emergency_contact_name, emergency_contact_phone, emergency_contact_relationship, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tenant.ID,
		tenant.OwnerID,
		tenant.FirstName,
		tenant.LastName,
		tenant.Name,
		tenant.Email,
		tenant.Phone,
		tenant.BillingCustomerID,
		tenant.EmergencyContactName,
		tenant.EmergencyContactPhone,
		tenant.EmergencyContactRelationship,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_id, first_name, last_name, name, email, phone, billing_customer_id,
			emergency_contact_name, emergency_contact_phone, emergency_contact_relationship, created_at, updated_at
		 FROM tenants WHERE id = ?`,
		id,
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM tenants WHERE id = ?`, id)
	return result.RowsAffected, result.Error
}
