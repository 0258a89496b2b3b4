package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elevate-events/lounge/internal/backend"
	"github.com/elevate-events/lounge/internal/booking"
	"github.com/elevate-events/lounge/internal/catalog"
	"github.com/elevate-events/lounge/internal/config"
	"github.com/elevate-events/lounge/internal/postgres"
	redisx "github.com/elevate-events/lounge/internal/redis"
	postgresrepo "github.com/elevate-events/lounge/internal/repository/postgres"
	redisrepo "github.com/elevate-events/lounge/internal/repository/redis"
	"github.com/elevate-events/lounge/internal/service"
	httpgin "github.com/elevate-events/lounge/internal/transport/http/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Migrate applies the embedded schema migrations before serving.
	Migrate bool
}

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	rdb        *redis.Client
	pubsub     *redisx.BookingsPubSub
	services   *service.Services
	httpServer *http.Server
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	pgxPool, err := postgres.New(ctx, postgres.Config{
		DSN:             cfg.Postgres.DSN(),
		ApplicationName: "elevate-lounge",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redisx.New(ctx, redisx.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	store := postgresrepo.NewStore(pgxPool)
	if opts.Migrate {
		if err := store.Migrate(ctx); err != nil {
			pgxPool.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	cat := catalog.Default()
	wiz := booking.New(cat, booking.WithLocation(cfg.Wizard.Location))

	cache := redisrepo.NewCache(rdb)
	pubsub := redisx.NewBookingsPubSub(rdb)

	services := service.NewServices(service.Deps{
		Wizard:      wiz,
		Store:       store,
		Sessions:    redisrepo.NewSessionStore(rdb, cfg.Wizard.SessionTTL),
		Idempotency: redisrepo.NewIdempotencyStore(rdb, 24*time.Hour),
		Cache:       cache,
		PubSub:      pubsub,
		Limiter: redisrepo.NewSlidingWindowLimiter(
			rdb,
			redisx.KeyRateLimit("submit"),
			cfg.Wizard.SubmitRateLimit,
			cfg.Wizard.SubmitWindow,
		),
		Backend: backend.New(backend.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout}, logger),
		Log:     logger,
	}, service.Config{})

	router := httpgin.NewRouter(services, cat, wiz, logger)

	return &App{
		cfg:      cfg,
		logger:   logger,
		pool:     pgxPool,
		rdb:      rdb,
		pubsub:   pubsub,
		services: services,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer a.pool.Close()
	defer a.rdb.Close()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Other instances confirm bookings too; drop our cached availability
	// whenever one does.
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, msg redisx.BookingConfirmed) {
			if err := a.services.Content.InvalidateAvailability(ctx); err != nil {
				a.logger.Warn("invalidate availability", "reference", msg.Reference, "error", err)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("booking subscriber: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
