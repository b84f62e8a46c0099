package app

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/dentaldesk/config"
	"github.com/Alijeyrad/dentaldesk/internal/session"
	"github.com/Alijeyrad/dentaldesk/pkg/observability"
	redispkg "github.com/Alijeyrad/dentaldesk/pkg/redis"
	"github.com/Alijeyrad/dentaldesk/pkg/restclient"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideBackendClient),
	fx.Provide(ProvideSessionStore),
)

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

// ProvideBackendClient builds the client of the clinic REST backend. It
// holds no connections that need closing.
func ProvideBackendClient(cfg *config.Config) *restclient.Client {
	slog.Debug("clinic backend configured", "base_url", cfg.Backend.BaseURL, "api_prefix", cfg.Backend.APIPrefix)
	return restclient.New(restclient.FromCentralConfig(cfg.Backend))
}

func ProvideSessionStore(rdb *redis.Client, cfg *config.Config) session.Store {
	return session.NewFromCentral(rdb, cfg.Session)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
