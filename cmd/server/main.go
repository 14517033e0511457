package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	catalogcache "gamelib/internal/catalog/cache"
	cataloghandler "gamelib/internal/catalog/handler"
	catalogmetrics "gamelib/internal/catalog/metrics"
	"gamelib/internal/catalog/rawg"
	catalogservice "gamelib/internal/catalog/service"
	consolehandler "gamelib/internal/console/handler"
	consolemetrics "gamelib/internal/console/metrics"
	consoleservice "gamelib/internal/console/service"
	consolestore "gamelib/internal/console/store"
	"gamelib/internal/game/adapters"
	gamehandler "gamelib/internal/game/handler"
	gamemetrics "gamelib/internal/game/metrics"
	gameservice "gamelib/internal/game/service"
	gamestore "gamelib/internal/game/store"
	httpapi "gamelib/internal/http"
	"gamelib/internal/integrity"
	"gamelib/internal/platform/config"
	"gamelib/internal/platform/httpserver"
	"gamelib/internal/platform/logger"
	platformmetrics "gamelib/internal/platform/metrics"
	"gamelib/internal/platform/postgres"
	platformredis "gamelib/internal/platform/redis"
	"gamelib/pkg/platform/audit"
	"gamelib/pkg/platform/audit/publisher"
	kafkapublisher "gamelib/pkg/platform/audit/publishers/kafka"
	auditmemory "gamelib/pkg/platform/audit/store/memory"
	auditpostgres "gamelib/pkg/platform/audit/store/postgres"
	txcontext "gamelib/pkg/platform/tx"
)

const (
	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
	auditBufferSize  = 256
	shutdownTimeout  = 10 * time.Second
)

// consoleStore is what the services and the integrity coordinator need from
// either console store implementation.
type consoleStore interface {
	consoleservice.Store
	integrity.ConsoleStore
	adapters.ConsoleStore
}

type gameStore interface {
	gameservice.Store
	integrity.GameStore
}

// infra holds the process-wide resources closed on shutdown.
type infra struct {
	db     *sql.DB
	redis  *platformredis.Client
	kafka  *kgo.Client
	health map[string]httpapi.HealthCheck
}

func (i *infra) close(log *slog.Logger) {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Warn("postgres close failed", "error", err)
		}
	}
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := &infra{health: map[string]httpapi.HealthCheck{}}
	defer res.close(log)

	var (
		consoles consoleStore
		games    gameStore
		storeTx  integrity.StoreTx
		auditLog audit.Store
	)
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		res.db = db
		res.health["postgres"] = db.PingContext
		if cfg.Database.AutoMigrate {
			applied, err := postgres.Migrate(ctx, db)
			if err != nil {
				return err
			}
			log.Info("database migrated", "applied", applied)
		}
		consoles = consolestore.NewPostgres(db)
		games = gamestore.NewPostgres(db)
		storeTx = integrity.NewPostgresTx(db, txcontext.DefaultTimeout)
		auditLog = auditpostgres.New(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		consoles = consolestore.NewInMemory()
		games = gamestore.NewInMemory()
		storeTx = integrity.NewInMemoryTx()
		auditLog = auditmemory.NewInMemoryStore()
	}

	sinks := audit.Fanout{auditLog}
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := kafkapublisher.NewClient(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		res.kafka = client
		res.health["kafka"] = client.Ping
		sinks = append(sinks, kafkapublisher.New(client, cfg.Kafka.AuditTopic))
	}
	auditPublisher := publisher.NewPublisher(sinks,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	var platformCache catalogservice.PlatformCache = catalogcache.NewMemory(cfg.Catalog.PlatformCacheTTL)
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, caching platforms in memory", "error", err)
	} else if redisClient != nil {
		res.redis = redisClient
		res.health["redis"] = redisClient.Health
		platformCache = catalogcache.NewRedis(redisClient.Client, cfg.Catalog.PlatformCacheTTL)
	}

	rawgClient := rawg.New(cfg.Catalog.APIKey, cfg.Catalog.BaseURL, cfg.Catalog.Timeout,
		rawg.WithBreaker(rawg.NewBreaker(breakerThreshold, breakerCooldown)),
		rawg.WithLogger(log),
	)
	if !rawgClient.Configured() {
		log.Warn("RAWG_API_KEY not set, catalog lookups will fail")
	}

	coordinator := integrity.New(consoles, games,
		integrity.WithStoreTx(storeTx),
		integrity.WithLogger(log),
	)
	consoleSvc := consoleservice.New(consoles, coordinator,
		consoleservice.WithLogger(log),
		consoleservice.WithAuditPublisher(auditPublisher),
		consoleservice.WithMetrics(consolemetrics.New()),
	)
	gameSvc := gameservice.New(games, adapters.NewConsoleDirectory(consoles),
		gameservice.WithLogger(log),
		gameservice.WithAuditPublisher(auditPublisher),
		gameservice.WithMetrics(gamemetrics.New()),
	)
	catalogSvc := catalogservice.New(rawgClient, consoles,
		catalogservice.WithLogger(log),
		catalogservice.WithMetrics(catalogmetrics.New()),
		catalogservice.WithPlatformCache(platformCache),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		Metrics:        platformmetrics.New(),
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
		Handlers: []httpapi.RouteRegistrar{
			consolehandler.New(consoleSvc, log),
			gamehandler.New(gameSvc, log),
			cataloghandler.New(catalogSvc, log),
		},
		Health:         res.health,
		MetricsHandler: promhttp.Handler(),
	})

	srv := httpserver.New(cfg.Addr, router, cfg.RequestTimeout)

	// The listener and the shutdown watcher share a context: a signal or a
	// listener failure stops both.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gamelib", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
