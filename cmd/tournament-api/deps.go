package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/arenaops/tournament-api/internal/api/handler"
	"github.com/arenaops/tournament-api/internal/core/service"
	mongostore "github.com/arenaops/tournament-api/internal/infrastructure/db/mongo"
	redisstore "github.com/arenaops/tournament-api/internal/infrastructure/db/redis"
	"github.com/arenaops/tournament-api/internal/infrastructure/identity"
	"github.com/arenaops/tournament-api/internal/infrastructure/queue"
	"github.com/arenaops/tournament-api/internal/infrastructure/token"
	"github.com/arenaops/tournament-api/internal/pkg/config"
	"github.com/arenaops/tournament-api/pkg/logger"
)

const retryBase = 500 * time.Millisecond

// app holds the wired service and the connections it owns.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	mongo *mongo.Client
	db    *mongo.Database
	redis *redis.Client
	audit *queue.Dispatcher
	auth  *service.AuthService
}

// buildApp connects to MongoDB and Redis, retrying up to retries times each,
// and wires the auth stack on top of them.
func buildApp(ctx context.Context, cfg *config.Config, retries uint64) (*app, error) {
	log := logger.Get()

	type mongoConn struct {
		client *mongo.Client
		db     *mongo.Database
	}
	mc, err := withRetry(ctx, log, "mongodb", retries, func(ctx context.Context) (mongoConn, error) {
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  serviceName,
		})
		return mongoConn{client: client, db: db}, err
	})
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("dependency", "mongodb").Wrap(err)
	}

	rdb, err := withRetry(ctx, log, "redis", retries, func(ctx context.Context) (*redis.Client, error) {
		return redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	})
	if err != nil {
		_ = mc.client.Disconnect(context.Background())
		return nil, oops.Code("CACHE_CONNECT_FAILED").With("dependency", "redis").Wrap(err)
	}

	identities := mongostore.NewIdentityRepository(mc.db)
	if err := identities.EnsureIndexes(ctx); err != nil {
		_ = mc.client.Disconnect(context.Background())
		_ = rdb.Close()
		return nil, oops.Code("INDEX_SETUP_FAILED").With("collection", "auth_identities").Wrap(err)
	}

	backend := identity.NewBackend(
		identities,
		mongostore.NewProfileRepository(mc.db),
		redisstore.NewRefreshTokenStore(rdb),
		redisstore.NewRevocationStore(rdb),
		token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL),
		identity.Options{
			RefreshTTL:           cfg.Auth.RefreshTokenTTL,
			BcryptCost:           cfg.Auth.BcryptCost,
			RequireVerifiedEmail: cfg.Auth.RequireVerifiedEmail,
		},
		logger.Component("identity"),
	)

	audit := queue.NewDispatcher(cfg.Audit.Workers, mongostore.NewAuditRepository(mc.db), logger.Component("audit"))

	auth := service.NewAuthService(backend, audit, service.AuthServiceConfig{
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		CallTimeout:       cfg.Auth.IdentityTimeout,
	}, logger.Component("auth"))

	return &app{
		cfg:   cfg,
		log:   log,
		mongo: mc.client,
		db:    mc.db,
		redis: rdb,
		audit: audit,
		auth:  auth,
	}, nil
}

// readinessChecks pings the stores the auth stack depends on.
func (a *app) readinessChecks() map[string]handler.Check {
	return map[string]handler.Check{
		"mongodb": mongostore.Pinger(a.mongo),
		"redis":   redisstore.Pinger(a.redis),
	}
}

func (a *app) close(ctx context.Context) {
	if err := a.redis.Close(); err != nil {
		a.log.Warn().Err(err).Msg("redis close failed")
	}
	if err := a.mongo.Disconnect(ctx); err != nil {
		a.log.Warn().Err(err).Msg("mongodb disconnect failed")
	}
}

func withRetry[T any](ctx context.Context, log zerolog.Logger, name string, retries uint64, fn func(context.Context) (T, error)) (T, error) {
	var out T
	backoff := retry.WithMaxRetries(retries, retry.NewExponential(retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("connection attempt failed")
			return retry.RetryableError(err)
		}
		out = v
		return nil
	})
	return out, err
}
