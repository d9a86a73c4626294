package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository reads the property catalog. Properties and units are managed
// outside onboarding so there are no write operations here.
type Repository interface {
	FindUnit(ctx context.Context, db *gorm.DB, unitID snowflake.ID) (*Unit, error)
	FindProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) (*Property, error)
}
