package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/homecare/internal/adapter/events"
	"github.com/polkiloo/homecare/internal/adapter/gateway"
	"github.com/polkiloo/homecare/internal/app"
	"github.com/polkiloo/homecare/internal/config"
	"github.com/polkiloo/homecare/internal/logger"
	"github.com/polkiloo/homecare/internal/pkg/auth"
	"github.com/polkiloo/homecare/internal/realtime"
	"github.com/polkiloo/homecare/internal/server/http/router"
	"github.com/polkiloo/homecare/internal/storage/objectstore"
	"github.com/polkiloo/homecare/internal/storage/postgres"
	"github.com/polkiloo/homecare/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		objectstore.Module,
		gateway.Module,
		events.Module,
		realtime.Module,
		usecase.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
