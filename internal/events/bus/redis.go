package bus

import (
	"context"
	"errors"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tenantflow/internal/config"
	"github.com/smallbiznis/tenantflow/internal/events"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const streamPrefix = "tenantflow:events:"

// NewRedisClient returns nil when no redis address is configured.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})
	if lc != nil {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
	}
	return client
}

// RedisPublisher appends each event to a stream named after its topic.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if p == nil || p.client == nil {
		return errors.New("redis publisher not configured")
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName(topic),
		Values: map[string]interface{}{
			"topic":   topic,
			"payload": string(payload),
		},
	}).Err()
}

func StreamName(topic string) string {
	return streamPrefix + strings.TrimSpace(topic)
}

// LogPublisher stands in for the bus when redis is not configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.Named("events.log")}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	p.log.Info("event published", zap.String("topic", topic), zap.ByteString("payload", payload))
	return nil
}

// Sink is the publisher the relay forwards outbox rows to.
type Sink events.Publisher

// ProvideSink picks the redis stream publisher when a client is available.
func ProvideSink(client *redis.Client, log *zap.Logger) Sink {
	if client == nil {
		log.Warn("redis not configured, relayed events are only logged")
		return NewLogPublisher(log)
	}
	return NewRedisPublisher(client)
}
