package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadtrack_backend/internal/events"
	followuprepo "leadtrack_backend/internal/followups/repository"
	leadrepo "leadtrack_backend/internal/leads/repository"
	"leadtrack_backend/internal/notification"
	"leadtrack_backend/internal/scanner"
	"leadtrack_backend/internal/scheduler"
	"leadtrack_backend/platform/config"
	"leadtrack_backend/platform/db"
	"leadtrack_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// lockTTL backstops a crashed scan holder; a healthy scan releases long
// before this.
const lockTTL = 30 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	redisOpt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid redis url", "error", err)
		panic("invalid redis url: " + err.Error())
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	eventBus := events.NewInMemoryBus(log)

	notificationModule := notification.NewModule(pool, cfg.NotificationTTL, log)
	notificationModule.RegisterHandlers(eventBus)

	lock := scanner.NewRedisLock(redisClient, lockTTL)
	leadRepo := leadrepo.New(pool)
	followupRepo := followuprepo.New(pool)

	inactivityScan := scanner.NewInactivityScanner(leadRepo, notificationModule.Dispatcher(), cfg, lock, log)
	followupScan := scanner.NewFollowupScanner(followupRepo, leadRepo, notificationModule.Dispatcher(), cfg, lock, log)

	enqueuer, err := scheduler.NewPeriodicEnqueuer(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic enqueuer", "error", err)
		panic("failed to initialize periodic enqueuer: " + err.Error())
	}
	go func() {
		if err := enqueuer.Run(); err != nil {
			log.Error("periodic enqueuer stopped", "error", err)
		}
	}()
	defer enqueuer.Shutdown()

	worker, err := scheduler.NewWorker(cfg, inactivityScan, followupScan, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
