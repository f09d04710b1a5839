package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"regional-storefront-go/internal/logger"
)

// InvalidationChannel is the Redis pub/sub channel carrying tag invalidations.
const InvalidationChannel = "storefront:cache:invalidate"

// connectionTimeout bounds the startup ping.
const connectionTimeout = 5 * time.Second

// ErrEmptyAddress is returned when Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

type invalidationMessage struct {
	Origin string   `json:"origin"`
	Tags   []string `json:"tags"`
}

// Broadcaster invalidates tags in the local cache and fans the invalidation
// out to other processes over Redis. Without a Redis client it is local-only.
type Broadcaster struct {
	local  *Cache
	client *redis.Client
	origin string
	log    logger.Logger
}

// NewBroadcaster wraps local. client may be nil.
func NewBroadcaster(local *Cache, client *redis.Client, log logger.Logger) *Broadcaster {
	if log == nil {
		log = logger.NewNop()
	}
	return &Broadcaster{
		local:  local,
		client: client,
		origin: uuid.NewString(),
		log:    log,
	}
}

// Invalidate drops tags locally, then publishes them. Publish failures are
// logged; other processes fall back to TTL expiry.
func (b *Broadcaster) Invalidate(ctx context.Context, tags ...string) {
	b.local.Invalidate(ctx, tags...)
	if b.client == nil || len(tags) == 0 {
		return
	}

	payload, err := json.Marshal(invalidationMessage{Origin: b.origin, Tags: tags})
	if err != nil {
		b.log.Error("Failed to encode cache invalidation", logger.Error(err))
		return
	}
	if err := b.client.Publish(ctx, InvalidationChannel, payload).Err(); err != nil {
		b.log.Warn("Failed to publish cache invalidation",
			logger.Strings("tags", tags),
			logger.Error(err),
		)
	}
}

// Listen applies invalidations published by other processes until ctx is done.
func (b *Broadcaster) Listen(ctx context.Context) error {
	if b.client == nil {
		return nil
	}

	sub := b.client.Subscribe(ctx, InvalidationChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", InvalidationChannel, err)
	}
	b.log.Info("Listening for cache invalidations", logger.String("channel", InvalidationChannel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.apply(ctx, msg.Payload)
		}
	}
}

func (b *Broadcaster) apply(ctx context.Context, payload string) {
	var msg invalidationMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		b.log.Warn("Ignoring malformed cache invalidation", logger.Error(err))
		return
	}
	if msg.Origin == b.origin {
		return
	}
	b.local.Invalidate(ctx, msg.Tags...)
}
