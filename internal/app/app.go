package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/homecare/internal/adapter/events"
	"github.com/polkiloo/homecare/internal/config"
	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/domain/repository"
	"github.com/polkiloo/homecare/internal/pkg/retry"
	"github.com/polkiloo/homecare/internal/usecase"
	"github.com/polkiloo/homecare/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewCareFacade,
		newHTTPServer,
		newOutboxRelay,
	),
	fx.Invoke(registerAdminBootstrap, registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type relayParams struct {
	fx.In

	Outbox    repository.OutboxRepository
	Publisher events.Publisher
	Config    *config.Config
	Logger    *slog.Logger
}

func newOutboxRelay(p relayParams) *worker.OutboxRelay {
	return worker.NewOutboxRelay(p.Outbox, p.Publisher, worker.RelayOptions{
		PollInterval: p.Config.OutboxPollInterval,
		BatchSize:    p.Config.OutboxBatchSize,
		Workers:      p.Config.WorkerPoolSize,
		MaxAttempts:  p.Config.OutboxMaxAttempts,
		Retry:        retry.Config{MaxAttempts: 3, Backoff: retry.DefaultBackoff()},
	}, p.Logger)
}

// AdminProvisioner creates the configured administrator account.
type AdminProvisioner interface {
	EnsureAdmin(ctx context.Context, login, password string) (*model.User, error)
}

type adminParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Auth      *usecase.AuthUseCase
	Config    *config.Config
	Logger    *slog.Logger
}

func registerAdminBootstrap(p adminParams) {
	appendAdminHook(p.Lifecycle, p.Auth, p.Config, p.Logger)
}

// appendAdminHook provisions the administrator before the HTTP server starts.
// Nothing is registered when no admin login is configured.
func appendAdminHook(lc fx.Lifecycle, provisioner AdminProvisioner, cfg *config.Config, logger *slog.Logger) {
	if cfg.AdminLogin == "" {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			admin, err := provisioner.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword)
			if err != nil {
				return fmt.Errorf("provision admin: %w", err)
			}
			logger.Info("administrator ready", slog.String("user_id", admin.ID))
			return nil
		},
	})
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Relay      *worker.OutboxRelay
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting homecare", slog.String("addr", p.Server.Addr))
			// the start context is cancelled once startup completes
			p.Relay.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Relay.Stop()
			p.Logger.Info("homecare stopped")
			return nil
		},
	})
}
