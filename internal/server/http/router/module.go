package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/homecare/internal/app"
	"github.com/polkiloo/homecare/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(func(facade *app.CareFacade) handlers.CareFacade { return facade }),
	fx.Provide(Setup),
)
