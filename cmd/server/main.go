package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // scheduler time zones on minimal images

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/menfistoo/purobeach/internal/booking"
	"github.com/menfistoo/purobeach/internal/config"
	"github.com/menfistoo/purobeach/internal/database"
	"github.com/menfistoo/purobeach/internal/handler"
	"github.com/menfistoo/purobeach/internal/logger"
	"github.com/menfistoo/purobeach/internal/queue"
	"github.com/menfistoo/purobeach/internal/repository"
	"github.com/menfistoo/purobeach/internal/router"
	"github.com/menfistoo/purobeach/internal/scheduler"
	"github.com/menfistoo/purobeach/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	// a missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(config.LoadLogConfig())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("schema migrated")
	}
	store := repository.NewStore(db, log.Named("store"))

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and catalog cache disabled")
	} else {
		defer rdb.Close()
	}

	qcfg := config.LoadQueueConfig()
	var pub booking.Publisher
	if qcfg.Enabled {
		p := service.NewEventPublisher(qcfg, log)
		defer p.Close()
		pub = p
	}

	engine := booking.New(store, pub, log.Named("engine"), config.LoadEngineConfig())

	e := router.New(router.Deps{
		Reservations: handler.NewReservationHandler(engine, handler.NewValidator(), log.Named("handler")),
		Catalog:      handler.NewCatalogHandler(store.Furniture, engine, log.Named("handler")),
		DB:           db,
		JWTSecret:    cfg.JWTSecret,
		RateLimit:    config.LoadRateLimitConfig(),
		Cache:        config.LoadCacheConfig(),
		Redis:        rdb,
		Log:          log,
	})

	var sc *scheduler.Scheduler
	if scfg := config.LoadSchedulerConfig(); scfg.Enabled {
		if sc, err = scheduler.New(scfg, engine, log); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down http server")
		return e.Shutdown(sctx)
	})

	if sc != nil {
		sc.Start()
		g.Go(func() error {
			<-gctx.Done()
			return sc.Shutdown()
		})
	}

	if qcfg.Enabled {
		consumer := queue.NewAuditConsumer(qcfg, log)
		g.Go(func() error { return consumer.Run(gctx) })
	}

	return g.Wait()
}
