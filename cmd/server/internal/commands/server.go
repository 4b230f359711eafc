package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/teamwell/staffd/internal/announce"
	"github.com/teamwell/staffd/internal/auth"
	"github.com/teamwell/staffd/internal/config"
	"github.com/teamwell/staffd/internal/directory"
	"github.com/teamwell/staffd/internal/logger"
	"github.com/teamwell/staffd/internal/realtime"
	"github.com/teamwell/staffd/internal/server"
	"github.com/teamwell/staffd/internal/store"
	memorystore "github.com/teamwell/staffd/internal/store/memory"
	postgresstore "github.com/teamwell/staffd/internal/store/postgres"
)

type ServerCmd struct {
	// Config points at an optional YAML file. Flags below are ignored
	// when it is set.
	Config string `help:"path to YAML config file" default:"" env:"STAFFD_CONFIG"`

	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"STAFFD_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"STAFFD_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"STAFFD_TLS_KEY"`

	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"" env:"STAFFD_CORS_ORIGINS"`

	SessionSecret string        `help:"secret key for HMAC signing of session tokens" env:"STAFFD_SESSION_SECRET"`
	SessionTTL    time.Duration `help:"session TTL" default:"168h" env:"STAFFD_SESSION_TTL"`

	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"STAFFD_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`

	RedisAddr     string `help:"redis address for cross-instance event delivery (empty disables redis)" default:"" env:"STAFFD_REDIS_ADDR"`
	RedisPassword string `help:"redis password" default:"" env:"STAFFD_REDIS_PASSWORD"`
	RedisDB       int    `help:"redis database number" default:"0" env:"STAFFD_REDIS_DB"`
}

type PostgresStoreFlags struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"STAFFD_POSTGRES_AUTO_MIGRATE"`
}

// resolveConfig builds the effective configuration, preferring the YAML
// file when one is given.
func (c *ServerCmd) resolveConfig() (*config.Config, error) {
	if c.Config != "" {
		return config.Load(c.Config)
	}

	cfg := &config.Config{
		Listen:      c.Listen,
		TLSCert:     c.Cert,
		TLSKey:      c.Key,
		CORSOrigins: c.CORSOrigins,
		Session: config.SessionConfig{
			Secret: c.SessionSecret,
			TTL:    c.SessionTTL,
		},
		Store: config.StoreConfig{
			Type: c.StoreType,
			Postgres: config.PostgresConfig{
				ConnString:      c.PostgresStore.ConnString,
				MaxConns:        c.PostgresStore.MaxConns,
				MinConns:        c.PostgresStore.MinConns,
				MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
				MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
				AutoMigrate:     c.PostgresStore.AutoMigrate,
			},
		},
		Redis: config.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	cfg, err := c.resolveConfig()
	if err != nil {
		return err
	}

	var stores *store.Stores

	switch cfg.Store.Type {
	case "postgres":
		poolCfg := &postgresstore.PoolConfig{
			ConnString:      cfg.Store.Postgres.ConnString,
			MaxConns:        cfg.Store.Postgres.MaxConns,
			MinConns:        cfg.Store.Postgres.MinConns,
			MaxConnLifetime: cfg.Store.Postgres.MaxConnLifetime,
			MaxConnIdleTime: cfg.Store.Postgres.MaxConnIdleTime,
		}

		// The database often comes up after us in orchestrated
		// deployments, so retry the initial connection.
		pool, err := backoff.Retry(ctx, func() (*pgxpool.Pool, error) {
			pool, err := postgresstore.NewPool(ctx, poolCfg)
			if err != nil {
				log.Warn().Err(err).Msg("Database not ready, retrying")
				return nil, err
			}
			return pool, nil
		}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxElapsedTime(time.Minute))
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		if cfg.Store.Postgres.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info().Msg("Database migrations completed")
		}

		stores = postgresstore.NewStores(pool)
		log.Info().Msg("Using PostgreSQL stores with shared connection pool")

	default:
		stores = memorystore.NewStores()
		log.Info().Msg("Using in-memory stores")
	}

	hub := realtime.NewHub()

	var broker realtime.Broker = hub
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}

		redisBroker := realtime.NewRedisBroker(client, hub)
		go func() {
			if err := redisBroker.Start(ctx); err != nil {
				log.Error().Err(err).Msg("Redis event subscriber stopped")
			}
		}()

		broker = redisBroker
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Using redis event broker")
	}

	tokens, err := auth.NewTokenCodec([]byte(cfg.Session.Secret))
	if err != nil {
		return err
	}

	srv := server.New(
		server.Config{
			CORSOrigins:   cfg.CORSOrigins,
			SessionTTL:    cfg.Session.TTL,
			SecureCookies: cfg.TLSCert != "",
		},
		log,
		stores,
		tokens,
		directory.NewService(stores),
		announce.NewEngine(stores.Users, stores.Notifications, broker),
		hub,
	)

	httpServer := configureHTTPServer(cfg.Listen, srv.Handler())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLSCert != "" {
			log.Info().Str("addr", cfg.Listen).Msg("Starting HTTPS server")
			errCh <- httpServer.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		log.Info().Str("addr", cfg.Listen).Msg("Starting HTTP server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}

	return nil
}
