package events

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/homecare/internal/config"
)

// Module provides the outbox event publisher.
var Module = fx.Module("events",
	fx.Provide(newPublisher),
	fx.Invoke(registerLifecycle),
)

type publisherParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

var dialKafka = func(brokers []string, topic string, logger *slog.Logger) (Publisher, error) {
	return DialKafka(brokers, topic, logger)
}

func newPublisher(p publisherParams) (Publisher, error) {
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Info("kafka brokers not configured, events are logged only")
		return NewLogPublisher(p.Logger), nil
	}
	return dialKafka(p.Config.KafkaBrokers, p.Config.KafkaTopic, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, publisher Publisher) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
}
