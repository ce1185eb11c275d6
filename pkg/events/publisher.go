package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/flamingo-app/flamingo-server/config"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Topics for user lifecycle events consumed by downstream workers.
const (
	TopicUserRegistered = "flamingo.user.registered"
	TopicUserVerified   = "flamingo.user.verified"
)

// Publisher emits domain events. Publishing is best-effort from the caller's
// point of view; failures are reported but requests never depend on them.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
	Close() error
}

// RedisPublisher writes events to Redis Streams, one stream per topic.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(cfg *config.Config) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.Database,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.GetLogger().Info("Event publisher connected to Redis",
		zap.String("address", cfg.RedisAddress()))

	return &RedisPublisher{rdb: rdb}, nil
}

// ProvisionTopics creates the consumer groups for the given topics so
// downstream workers can attach before the first event arrives. Groups that
// already exist are left alone.
func (p *RedisPublisher) ProvisionTopics(ctx context.Context, group string, topics ...string) error {
	for _, topic := range topics {
		err := p.rdb.XGroupCreateMkStream(ctx, topic, group, "$").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("failed to provision topic %s: %w", topic, err)
		}
	}
	return nil
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			"payload":     data,
			"produced_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", topic, err)
	}

	return nil
}

// Client exposes the underlying connection for health probes.
func (p *RedisPublisher) Client() *redis.Client {
	return p.rdb
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// NopPublisher discards events; used in tests and when Redis is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, topic string, payload any) error { return nil }
func (NopPublisher) Close() error                                                 { return nil }
