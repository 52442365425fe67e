package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authbridge/pkg/bridge"
	"github.com/dmitrymomot/authbridge/pkg/config"
	"github.com/dmitrymomot/authbridge/pkg/httpserver"
	"github.com/dmitrymomot/authbridge/pkg/logger"
	"github.com/dmitrymomot/authbridge/pkg/provider"
	"github.com/dmitrymomot/authbridge/pkg/upstream"
)

type appConfig struct {
	BasePath string `env:"BASE_PATH" envDefault:"/oauth"`

	// StateSecret enables HMAC-signed round-trip state tokens when set.
	StateSecret string `env:"STATE_SECRET"`

	// GrantStore selects the grant store backend: "memory" or "redis".
	GrantStore string `env:"GRANT_STORE" envDefault:"memory"`
	RedisURL   string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Single registered downstream client. Real deployments replace the
	// reference provider with their own AuthorizationProvider.
	ClientID            string   `env:"DOWNSTREAM_CLIENT_ID,required"`
	ClientRedirectURIs  []string `env:"DOWNSTREAM_REDIRECT_URIS,required" envSeparator:","`
	ClientAllowedScopes []string `env:"DOWNSTREAM_ALLOWED_SCOPES" envSeparator:"," envDefault:"read"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var cfg appConfig
	config.MustLoad(&cfg)
	var ghCfg upstream.GitHubConfig
	config.MustLoad(&ghCfg)
	var provCfg provider.Config
	config.MustLoad(&provCfg)
	var srvCfg httpserver.Config
	config.MustLoad(&srvCfg)

	log := logger.New(logger.WithService("authbridge"))

	store, err := newGrantStore(ctx, cfg)
	if err != nil {
		return err
	}

	prov := provider.New(store,
		[]provider.Client{{
			ID:            cfg.ClientID,
			RedirectURIs:  cfg.ClientRedirectURIs,
			AllowedScopes: cfg.ClientAllowedScopes,
		}},
		provider.WithLogger(log),
		provider.WithCodeTTL(provCfg.CodeTTL),
	)

	opts := []bridge.Option{
		bridge.WithLogger(log),
		bridge.WithCallbackPath(cfg.BasePath + "/callback"),
	}
	if cfg.StateSecret != "" {
		opts = append(opts, bridge.WithSignedState([]byte(cfg.StateSecret)))
	}
	svc := bridge.New(prov, upstream.NewGitHub(ghCfg), opts...)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Mount(cfg.BasePath, svc.Handle())

	return httpserver.New(srvCfg, httpserver.WithLogger(log)).Run(ctx, r)
}

func newGrantStore(ctx context.Context, cfg appConfig) (provider.GrantStore, error) {
	switch cfg.GrantStore {
	case "memory":
		return provider.NewMemoryStore(), nil
	case "redis":
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		return provider.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown grant store %q", cfg.GrantStore)
	}
}
