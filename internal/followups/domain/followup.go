// Package domain holds the follow-up entity and its scheduling rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Follow-up statuses.
const (
	StatusPending     = "Pending"
	StatusCompleted   = "Completed"
	StatusRescheduled = "Rescheduled"
)

// FollowUp is a scheduled touchpoint on a lead. It is independently stored
// but referentially tied to the lead and removed with it.
type FollowUp struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Title     string
	DueDate   time.Time
	Status    string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Classification of a due follow-up relative to the scan clock.
type Classification int

const (
	// ClassNone means the follow-up is not yet due for a notification.
	ClassNone Classification = iota
	// ClassUpcoming means the follow-up is due today or tomorrow.
	ClassUpcoming
	// ClassMissed means the due date has already passed.
	ClassMissed
)

// Classify buckets a due date against the scan clock: missed when due before
// today's midnight, upcoming when due within [today_midnight, tomorrow_midnight].
func Classify(dueDate, now time.Time, loc *time.Location) Classification {
	local := now.In(loc)
	todayMidnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	tomorrowMidnight := todayMidnight.AddDate(0, 0, 1)

	due := dueDate.In(loc)
	switch {
	case due.Before(todayMidnight):
		return ClassMissed
	case !due.After(tomorrowMidnight):
		return ClassUpcoming
	default:
		return ClassNone
	}
}
