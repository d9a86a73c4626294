package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/internal/events"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmptyTopic     = errors.New("outbox topic is empty")
	ErrInvalidPayload = errors.New("outbox payload is not valid json")
)

// Publisher stores events in outbox_events. The relay forwards them to the bus.
type Publisher struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewOutboxPublisher(db *gorm.DB, genID *snowflake.Node) *Publisher {
	return &Publisher{
		db:    db,
		genID: genID,
	}
}

// ProvidePublisher exposes the outbox as the application event publisher.
func ProvidePublisher(p *Publisher) events.Publisher {
	return p
}

func (p *Publisher) WithTx(tx *gorm.DB) events.Publisher {
	return &Publisher{db: tx, genID: p.genID}
}

func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrEmptyTopic
	}
	if !json.Valid(payload) {
		return ErrInvalidPayload
	}

	now := time.Now().UTC()
	return p.db.WithContext(ctx).Exec(
		`INSERT INTO outbox_events (id, topic, payload, published, attempts, created_at)
		 VALUES (?, ?, ?, false, 0, ?)`,
		p.genID.Generate(),
		topic,
		datatypes.JSON(payload),
		now,
	).Error
}
