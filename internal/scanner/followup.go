package scanner

import (
	"context"
	"fmt"
	"time"

	fudomain "leadtrack_backend/internal/followups/domain"
	leaddomain "leadtrack_backend/internal/leads/domain"
	"leadtrack_backend/internal/notification/dispatcher"
	"leadtrack_backend/platform/apperr"
	"leadtrack_backend/platform/config"
	"leadtrack_backend/platform/logger"

	"github.com/google/uuid"
)

const followupLockKey = "scan:followup"

// DueFollowupSource lists pending follow-ups due at or before a cutoff.
type DueFollowupSource interface {
	ListDuePending(ctx context.Context, dueBefore time.Time) ([]fudomain.FollowUp, error)
}

// LeadGetter resolves a follow-up's owning lead.
type LeadGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*leaddomain.Lead, error)
}

// FollowupScanner reminds about follow-ups due today or tomorrow and flags
// those already missed. It only works inside the configured active window;
// outside it the scan is a quiet no-op.
type FollowupScanner struct {
	followups DueFollowupSource
	leads     LeadGetter
	notifier  Notifier
	cfg       config.ScannerConfig
	lock      Locker
	log       *logger.Logger
	now       func() time.Time
}

func NewFollowupScanner(followups DueFollowupSource, leads LeadGetter, notifier Notifier, cfg config.ScannerConfig, lock Locker, log *logger.Logger) *FollowupScanner {
	return &FollowupScanner{
		followups: followups,
		leads:     leads,
		notifier:  notifier,
		cfg:       cfg,
		lock:      lock,
		now:       time.Now,
		log:       log,
	}
}

// Run classifies each due pending follow-up as upcoming or missed and makes
// its notification current. The dispatcher retires any prior notification for
// the same follow-up, so a reminder flips to missed without ever coexisting
// with it. Orphaned follow-ups are skipped.
func (s *FollowupScanner) Run(ctx context.Context) (Summary, error) {
	loc := s.cfg.GetTimezone()
	local := s.now().In(loc)
	if local.Hour() < s.cfg.GetFollowupWindowStart() || local.Hour() >= s.cfg.GetFollowupWindowEnd() {
		return Summary{}, nil
	}

	acquired, err := s.lock.Acquire(ctx, followupLockKey)
	if err != nil {
		return Summary{}, fmt.Errorf("acquire followup lock: %w", err)
	}
	if !acquired {
		s.log.Info("followup scan already running, skipping")
		return Summary{}, nil
	}
	defer s.lock.Release(ctx, followupLockKey)

	todayMidnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	tomorrowMidnight := todayMidnight.AddDate(0, 0, 1)

	due, err := s.followups.ListDuePending(ctx, tomorrowMidnight)
	if err != nil {
		return Summary{}, fmt.Errorf("list due followups: %w", err)
	}

	var sum Summary
	for i := range due {
		f := &due[i]
		sum.Processed++

		outcome, err := s.notifyFollowup(ctx, f, local, loc)
		if err != nil {
			sum.Failed++
			s.log.Error("followup scan record failed", "followup", f.ID, "error", err)
			continue
		}
		sum = sum.add(outcome)
	}

	s.log.ScanSummary("followup", sum.Processed, sum.Created, sum.Retired, sum.Skipped, sum.Failed)
	return sum, nil
}

func (s *FollowupScanner) notifyFollowup(ctx context.Context, f *fudomain.FollowUp, now time.Time, loc *time.Location) (Summary, error) {
	lead, err := s.leads.GetByID(ctx, f.LeadID)
	if err != nil {
		// The owning lead is gone; the follow-up is an orphan, not an error.
		if apperr.Is(err, apperr.KindNotFound) {
			return Summary{Skipped: 1}, nil
		}
		return Summary{}, err
	}

	var kind, message string
	switch fudomain.Classify(f.DueDate, now, loc) {
	case fudomain.ClassMissed:
		kind = dispatcher.KindMissedFollowup
		message = fmt.Sprintf("Follow-up %q for lead %s was missed (due %s)", f.Title, lead.Name, f.DueDate.In(loc).Format("02 Jan 2006"))
	case fudomain.ClassUpcoming:
		kind = dispatcher.KindFollowupReminder
		message = fmt.Sprintf("Follow-up %q for lead %s is due %s", f.Title, lead.Name, f.DueDate.In(loc).Format("02 Jan 15:04"))
	default:
		return Summary{Skipped: 1}, nil
	}

	_, retired, err := s.notifier.Notify(ctx, dispatcher.Event{
		Kind:              kind,
		SubjectID:         &lead.ID,
		SubjectName:       lead.Name,
		PrimaryCategory:   lead.PrimaryCategory,
		SecondaryCategory: lead.SecondaryCategory,
		CauseKey:          f.ID.String(),
		Message:           message,
	})
	if err != nil {
		return Summary{}, err
	}
	return Summary{Created: 1, Retired: int(retired)}, nil
}
