package outbox

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type OutboxEvent struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	Topic       string         `gorm:"not null;index" json:"topic"`
	Payload     datatypes.JSON `gorm:"type:json;not null" json:"payload"`
	Published   bool           `gorm:"not null;default:false;index" json:"published"`
	Attempts    int            `gorm:"not null;default:0" json:"attempts"`
	LastError   *string        `gorm:"column:last_error" json:"last_error,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	PublishedAt *time.Time     `gorm:"column:published_at" json:"published_at,omitempty"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }
