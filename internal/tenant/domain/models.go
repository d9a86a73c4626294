package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tenant is a renter owned by a property owner.
type Tenant struct {
	ID                           snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID                      snowflake.ID `gorm:"not null;index" json:"owner_id"`
	FirstName                    string       `gorm:"column:first_name" json:"first_name,omitempty"`
	LastName                     string       `gorm:"column:last_name" json:"last_name,omitempty"`
	Name                         string       `gorm:"not null" json:"name"`
	Email                        string       `gorm:"not null;index" json:"email"`
	Phone                        *string      `gorm:"column:phone" json:"phone,omitempty"`
	BillingCustomerID            *string      `gorm:"column:billing_customer_id" json:"billing_customer_id,omitempty"`
	EmergencyContactName         *string      `gorm:"column:emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone        *string      `gorm:"column:emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	EmergencyContactRelationship *string      `gorm:"column:emergency_contact_relationship" json:"emergency_contact_relationship,omitempty"`
	CreatedAt                    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt                    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Tenant) TableName() string { return "tenants" }
