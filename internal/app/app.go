package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hoangnk/clubslots/internal/config"
	"github.com/hoangnk/clubslots/internal/notifier"
	notifieramqp "github.com/hoangnk/clubslots/internal/notifier/amqp"
	"github.com/hoangnk/clubslots/internal/postgres"
	"github.com/hoangnk/clubslots/internal/redis"
	postgresrepo "github.com/hoangnk/clubslots/internal/repository/postgres"
	redisrepo "github.com/hoangnk/clubslots/internal/repository/redis"
	"github.com/hoangnk/clubslots/internal/service"
	httpgin "github.com/hoangnk/clubslots/internal/transport/http/gin"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	closers    []func()
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redis.New(context.Background(), redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	app := &App{cfg: cfg, logger: logger}
	app.closers = append(app.closers, pgxPool.Close, func() { _ = rdb.Close() })

	// Notification broker; absent AMQP_URL means notifications are dropped.
	var notif notifier.Notifier = notifier.Noop{}
	if cfg.AMQP.URL != "" {
		pub, err := notifieramqp.NewPublisher(cfg.AMQP.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize amqp: %w", err)
		}
		notif = pub
		app.closers = append(app.closers, pub.Close)
	} else {
		logger.Warn("AMQP_URL not set, notifications disabled")
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	counts := redisrepo.NewLiveCountChannel(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "reserve", cfg.Reserve.RateLimit, cfg.Reserve.RateWindow)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Initialize services
	services := service.NewServices(store, cache, counts, notif, logger)

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, limiter, logger)

	app.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	err := g.Wait()

	for _, close := range a.closers {
		close()
	}

	return err
}
