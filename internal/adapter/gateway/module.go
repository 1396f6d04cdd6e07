package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/homecare/internal/config"
)

// Module exposes the payment gateway client to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	if p.Config.PaymentGatewayAddress == "" {
		p.Logger.Info("payment gateway not configured, using static virtual account")
		return StaticClient{}, nil
	}
	return NewHTTPClient(p.Config.PaymentGatewayAddress, p.Logger)
}
