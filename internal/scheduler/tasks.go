// Package scheduler runs the periodic scans through asynq: a periodic
// enqueuer emits scan tasks on a cron cadence and a worker executes them.
// Delivery is at-least-once; the scans themselves are idempotent.
package scheduler

import (
	"github.com/hibiken/asynq"
)

const TaskInactivityScan = "scans.inactivity"

const TaskFollowupScan = "scans.followup"

// Scan tasks carry no payload: each invocation derives everything from the
// clock and the store.

func NewInactivityScanTask() *asynq.Task {
	return asynq.NewTask(TaskInactivityScan, nil)
}

func NewFollowupScanTask() *asynq.Task {
	return asynq.NewTask(TaskFollowupScan, nil)
}
