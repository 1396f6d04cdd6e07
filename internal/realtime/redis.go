package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/polkiloo/homecare/internal/domain/model"
)

type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
	Close() error
}

// RedisRelay shares message events between instances through a pub/sub channel.
// Every instance, including the sender, delivers received events to its local hub.
type RedisRelay struct {
	client  redisClient
	channel string
	hub     *Hub
	logger  *slog.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

var _ Broadcaster = (*RedisRelay)(nil)

// NewRedisClient builds a client with pool settings suited for pub/sub.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func NewRedisRelay(client redisClient, channel string, hub *Hub, logger *slog.Logger) *RedisRelay {
	return &RedisRelay{client: client, channel: channel, hub: hub, logger: logger}
}

// Broadcast publishes the event to the shared channel.
func (r *RedisRelay) Broadcast(ctx context.Context, event model.MessageEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish message event: %w", err)
	}
	return nil
}

// Start subscribes to the channel and forwards events to the hub until Stop.
func (r *RedisRelay) Start(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	r.mu.Lock()
	r.pubsub = pubsub
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for msg := range pubsub.Channel() {
			r.deliver(msg.Payload)
		}
	}()

	r.logger.Info("realtime relay subscribed", slog.String("channel", r.channel))
	return nil
}

// Stop closes the subscription and the client and waits for the forwarder.
func (r *RedisRelay) Stop() error {
	r.mu.Lock()
	pubsub := r.pubsub
	r.pubsub = nil
	r.mu.Unlock()

	if pubsub != nil {
		if err := pubsub.Close(); err != nil {
			r.logger.Warn("close pubsub", slog.String("error", err.Error()))
		}
	}
	r.wg.Wait()
	return r.client.Close()
}

func (r *RedisRelay) deliver(payload string) {
	var event model.MessageEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		r.logger.Warn("skip malformed message event", slog.String("error", err.Error()))
		return
	}
	r.hub.Publish(event)
}
