package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, lease *Lease) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Lease, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
