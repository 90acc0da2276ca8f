package scheduler

import (
	"fmt"

	"leadtrack_backend/platform/config"
	"leadtrack_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Cron cadences: the inactivity scan once a day before business hours, the
// followup scan hourly (it no-ops itself outside the active window).
const (
	inactivityCron = "30 8 * * *"
	followupCron   = "0 * * * *"
)

// PeriodicEnqueuer registers the scan tasks on their cron cadence. It only
// enqueues; the worker executes.
type PeriodicEnqueuer struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodicEnqueuer(cfg config.SchedulerConfig, log *logger.Logger) (*PeriodicEnqueuer, error) {
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

	sched := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: cfg.GetTimezone(),
	})

	if _, err := sched.Register(inactivityCron, NewInactivityScanTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register inactivity scan: %w", err)
	}
	if _, err := sched.Register(followupCron, NewFollowupScanTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register followup scan: %w", err)
	}

	return &PeriodicEnqueuer{scheduler: sched, log: log}, nil
}

// Run starts the enqueuer and blocks until it stops.
func (e *PeriodicEnqueuer) Run() error {
	if e == nil || e.scheduler == nil {
		return nil
	}
	return e.scheduler.Run()
}

// Shutdown stops the enqueuer.
func (e *PeriodicEnqueuer) Shutdown() {
	if e == nil || e.scheduler == nil {
		return
	}
	e.scheduler.Shutdown()
}
