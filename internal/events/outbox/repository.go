package outbox

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Store is the relay side of the outbox table.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FetchPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	var rows []OutboxEvent
	err := s.db.WithContext(ctx).
		Where("published = ?", false).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (s *Store) MarkPublished(ctx context.Context, id snowflake.ID, now time.Time) error {
	return s.db.WithContext(ctx).Exec(
		`UPDATE outbox_events SET published = true, published_at = ?, attempts = attempts + 1, last_error = NULL WHERE id = ?`,
		now,
		id,
	).Error
}

func (s *Store) MarkFailed(ctx context.Context, id snowflake.ID, cause string) error {
	return s.db.WithContext(ctx).Exec(
		`UPDATE outbox_events SET attempts = attempts + 1, last_error = ? WHERE id = ?`,
		cause,
		id,
	).Error
}

func (s *Store) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&OutboxEvent{}).Where("published = ?", false).Count(&count).Error
	return count, err
}
