package scheduler

import (
	"context"
	"fmt"

	"leadtrack_backend/internal/scanner"
	"leadtrack_backend/platform/config"
	"leadtrack_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Scan is one periodic job.
type Scan interface {
	Run(ctx context.Context) (scanner.Summary, error)
}

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	inactivity Scan
	followup   Scan
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, inactivity, followup Scan, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		inactivity: inactivity,
		followup:   followup,
		log:        log,
	}

	mux.HandleFunc(TaskInactivityScan, w.handleInactivityScan)
	mux.HandleFunc(TaskFollowupScan, w.handleFollowupScan)

	return w, nil
}

func (w *Worker) handleInactivityScan(ctx context.Context, _ *asynq.Task) error {
	_, err := w.inactivity.Run(ctx)
	if err != nil {
		w.log.Error("inactivity scan failed", "error", err)
	}
	return err
}

func (w *Worker) handleFollowupScan(ctx context.Context, _ *asynq.Task) error {
	_, err := w.followup.Run(ctx)
	if err != nil {
		w.log.Error("followup scan failed", "error", err)
	}
	return err
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
