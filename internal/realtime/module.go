package realtime

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/homecare/internal/config"
)

// Module wires the local hub and, when Redis is configured, the cross-instance relay.
var Module = fx.Module("realtime",
	fx.Provide(
		NewHub,
		newBroadcaster,
	),
	fx.Invoke(registerLifecycle),
)

type broadcasterParams struct {
	fx.In

	Config *config.Config
	Hub    *Hub
	Logger *slog.Logger
}

func newBroadcaster(p broadcasterParams) Broadcaster {
	if p.Config.RedisAddr == "" {
		return p.Hub
	}
	client := NewRedisClient(p.Config.RedisAddr, p.Config.RedisPassword)
	return NewRedisRelay(client, p.Config.RedisChannel, p.Hub, p.Logger)
}

type relay interface {
	Start(ctx context.Context) error
	Stop() error
}

func registerLifecycle(lc fx.Lifecycle, b Broadcaster) {
	r, ok := b.(relay)
	if !ok {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return r.Start(ctx)
		},
		OnStop: func(context.Context) error {
			return r.Stop()
		},
	})
}
