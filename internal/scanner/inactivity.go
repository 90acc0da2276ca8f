package scanner

import (
	"context"
	"fmt"
	"time"

	leaddomain "leadtrack_backend/internal/leads/domain"
	"leadtrack_backend/internal/leads/repository"
	"leadtrack_backend/internal/notification/dispatcher"
	"leadtrack_backend/platform/config"
	"leadtrack_backend/platform/logger"

	"github.com/google/uuid"
)

const inactivityLockKey = "scan:inactivity"

// Cause keys identifying which staleness rule produced the notification.
const (
	causeUnassigned = "rule:unassigned"
	causeAssigned   = "rule:assigned"
)

// Notifier is the dispatcher surface the scanners need.
type Notifier interface {
	Notify(ctx context.Context, e dispatcher.Event) (dispatcher.Notification, int64, error)
	HasLive(ctx context.Context, subjectID *uuid.UUID, kind, causeKey string) (bool, error)
}

// StaleLeadSource lists leads matching a staleness rule.
type StaleLeadSource interface {
	ListStale(ctx context.Context, rule repository.StaleRule, cutoff time.Time) ([]leaddomain.Lead, error)
}

// InactivityScanner flags leads that stalled in the New status: either never
// assigned to a department, or assigned and then neglected.
type InactivityScanner struct {
	leads    StaleLeadSource
	notifier Notifier
	cfg      config.ScannerConfig
	lock     Locker
	log      *logger.Logger
	now      func() time.Time
}

func NewInactivityScanner(leads StaleLeadSource, notifier Notifier, cfg config.ScannerConfig, lock Locker, log *logger.Logger) *InactivityScanner {
	return &InactivityScanner{
		leads:    leads,
		notifier: notifier,
		cfg:      cfg,
		lock:     lock,
		now:      time.Now,
		log:      log,
	}
}

// Run evaluates both staleness rules and notifies once per qualifying lead.
// A lead already covered by a live inactivity notification for the same rule
// is skipped, which makes back-to-back runs idempotent. Per-lead failures are
// counted and the scan moves on.
func (s *InactivityScanner) Run(ctx context.Context) (Summary, error) {
	acquired, err := s.lock.Acquire(ctx, inactivityLockKey)
	if err != nil {
		return Summary{}, fmt.Errorf("acquire inactivity lock: %w", err)
	}
	if !acquired {
		s.log.Info("inactivity scan already running, skipping")
		return Summary{}, nil
	}
	defer s.lock.Release(ctx, inactivityLockKey)

	now := s.now()

	unassigned, err := s.runRule(ctx, repository.StaleUnassigned, now.Add(-s.cfg.GetInactivityUnassignedAfter()))
	if err != nil {
		return unassigned, err
	}
	assigned, err := s.runRule(ctx, repository.StaleAssigned, now.Add(-s.cfg.GetInactivityAssignedAfter()))
	if err != nil {
		return unassigned.add(assigned), err
	}

	total := unassigned.add(assigned)
	s.log.ScanSummary("inactivity", total.Processed, total.Created, total.Retired, total.Skipped, total.Failed)
	return total, nil
}

func (s *InactivityScanner) runRule(ctx context.Context, rule repository.StaleRule, cutoff time.Time) (Summary, error) {
	leads, err := s.leads.ListStale(ctx, rule, cutoff)
	if err != nil {
		return Summary{}, fmt.Errorf("list stale leads: %w", err)
	}

	var sum Summary
	for i := range leads {
		lead := &leads[i]
		sum.Processed++

		outcome, err := s.notifyLead(ctx, lead, rule)
		if err != nil {
			sum.Failed++
			s.log.Error("inactivity scan lead failed", "lead", lead.LeadID, "error", err)
			continue
		}
		sum = sum.add(outcome)
	}
	return sum, nil
}

func (s *InactivityScanner) notifyLead(ctx context.Context, lead *leaddomain.Lead, rule repository.StaleRule) (Summary, error) {
	causeKey := causeUnassigned
	if rule == repository.StaleAssigned {
		causeKey = causeAssigned
	}

	live, err := s.notifier.HasLive(ctx, &lead.ID, dispatcher.KindInactivity, causeKey)
	if err != nil {
		return Summary{}, err
	}
	if live {
		return Summary{Skipped: 1}, nil
	}

	_, retired, err := s.notifier.Notify(ctx, dispatcher.Event{
		Kind:              dispatcher.KindInactivity,
		SubjectID:         &lead.ID,
		SubjectName:       lead.Name,
		PrimaryCategory:   lead.PrimaryCategory,
		SecondaryCategory: lead.SecondaryCategory,
		CauseKey:          causeKey,
		Message:           s.ruleMessage(lead, rule),
	})
	if err != nil {
		return Summary{}, err
	}
	return Summary{Created: 1, Retired: int(retired)}, nil
}

func (s *InactivityScanner) ruleMessage(lead *leaddomain.Lead, rule repository.StaleRule) string {
	if rule == repository.StaleUnassigned {
		days := int(s.cfg.GetInactivityUnassignedAfter().Hours() / 24)
		return fmt.Sprintf("Lead %s has been unassigned for over %d days", lead.Name, days)
	}
	days := int(s.cfg.GetInactivityAssignedAfter().Hours() / 24)
	return fmt.Sprintf("Lead %s is with %s but has had no activity for %d days", lead.Name, lead.PrimaryCategory, days)
}
