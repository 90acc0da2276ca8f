// Package dispatcher maps domain events to notification records.
// Dispatch is best-effort: callers on the mutation path publish through the
// event bus and never block on, or fail from, a dispatch error.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"leadtrack_backend/platform/apperr"
	"leadtrack_backend/platform/logger"

	"github.com/google/uuid"
)

// Notification kinds.
const (
	KindLeadAssigned     = "lead_assigned"
	KindLeadConversion   = "lead_conversion"
	KindLeadDeleted      = "lead_deleted"
	KindNewRemark        = "new_remark"
	KindTicketRaised     = "ticket_raised"
	KindBulkUpload       = "bulk_upload"
	KindInactivity       = "inactivity"
	KindFollowupReminder = "followup_reminder"
	KindMissedFollowup   = "missed_followup"
)

// Notification is an independent top-level record; it is not owned by the
// lead it references and survives lead deletion. Expiry is advisory metadata
// for later cleanup, not enforced here.
type Notification struct {
	ID                uuid.UUID  `json:"id"`
	SubjectID         *uuid.UUID `json:"subjectId,omitempty"`
	SubjectName       string     `json:"subjectName"`
	Message           string     `json:"message"`
	Type              string     `json:"type"`
	PrimaryCategory   string     `json:"primaryCategory"`
	SecondaryCategory string     `json:"secondaryCategory"`
	CauseKey          string     `json:"causeKey"`
	CreatedAt         time.Time  `json:"createdAt"`
	Expiry            time.Time  `json:"expiry"`
}

// Store is the persistence surface the dispatcher needs.
type Store interface {
	Insert(ctx context.Context, n Notification) (Notification, error)
	// RetireByCause deletes live notifications matching the composite
	// (subject, one-of-types, cause) key and reports how many were retired.
	RetireByCause(ctx context.Context, subjectID *uuid.UUID, types []string, causeKey string) (int64, error)
	ExistsByCause(ctx context.Context, subjectID *uuid.UUID, typ, causeKey string) (bool, error)
}

// Event is the dispatcher's input: a domain occurrence plus the subject lead's
// classification, when available.
type Event struct {
	Kind              string
	SubjectID         *uuid.UUID
	SubjectName       string
	PrimaryCategory   string
	SecondaryCategory string
	// CauseKey identifies the underlying cause for deduplicated kinds
	// (a follow-up identifier, or a stable inactivity rule key). Empty for
	// event-originated kinds.
	CauseKey string
	// Actor and Detail feed the message templates.
	Actor  string
	Detail string
	// Message, when set, overrides the template entirely. Scanners use it to
	// carry rule-specific wording.
	Message string
}

// Service is the notification dispatcher.
type Service struct {
	store Store
	log   *logger.Logger
	ttl   time.Duration
	now   func() time.Time
}

// New creates a dispatcher writing through the given store.
func New(store Store, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		ttl:   ttl,
		now:   time.Now,
	}
}

// dedupGroups maps each deduplicated kind to the set of types that count as
// "the same underlying notification". Reminder and missed share a group so a
// reminder can flip to missed without ever coexisting with it.
var dedupGroups = map[string][]string{
	KindInactivity:       {KindInactivity},
	KindFollowupReminder: {KindFollowupReminder, KindMissedFollowup},
	KindMissedFollowup:   {KindFollowupReminder, KindMissedFollowup},
}

// Notify persists one notification for the event. For deduplicated kinds any
// live notification with the same (subject, type-group, cause) is retired
// first, so at most one live record exists per underlying cause. Returns the
// number retired alongside the inserted record.
func (s *Service) Notify(ctx context.Context, e Event) (Notification, int64, error) {
	if s == nil || s.store == nil {
		return Notification{}, 0, apperr.Internal("notification dispatcher not configured")
	}

	var retired int64
	if group, deduplicated := dedupGroups[e.Kind]; deduplicated {
		n, err := s.store.RetireByCause(ctx, e.SubjectID, group, e.CauseKey)
		if err != nil {
			return Notification{}, 0, err
		}
		retired = n
	}

	now := s.now()
	inserted, err := s.store.Insert(ctx, Notification{
		ID:                uuid.New(),
		SubjectID:         e.SubjectID,
		SubjectName:       e.SubjectName,
		Message:           s.message(e),
		Type:              e.Kind,
		PrimaryCategory:   e.PrimaryCategory,
		SecondaryCategory: e.SecondaryCategory,
		CauseKey:          e.CauseKey,
		CreatedAt:         now,
		Expiry:            now.Add(s.ttl),
	})
	if err != nil {
		return Notification{}, retired, err
	}

	return inserted, retired, nil
}

// HasLive reports whether a live notification already covers the given cause.
// The inactivity scanner uses this to skip instead of replace.
func (s *Service) HasLive(ctx context.Context, subjectID *uuid.UUID, kind, causeKey string) (bool, error) {
	return s.store.ExistsByCause(ctx, subjectID, kind, causeKey)
}

func (s *Service) message(e Event) string {
	if e.Message != "" {
		return e.Message
	}

	switch e.Kind {
	case KindLeadAssigned:
		return fmt.Sprintf("Lead %s has been assigned to %s", e.SubjectName, e.PrimaryCategory)
	case KindLeadConversion:
		return fmt.Sprintf("Lead %s has been converted by %s", e.SubjectName, e.Actor)
	case KindLeadDeleted:
		return fmt.Sprintf("Lead %s was deleted by %s", e.SubjectName, e.Actor)
	case KindNewRemark:
		return fmt.Sprintf("%s added a remark on lead %s: %s", e.Actor, e.SubjectName, e.Detail)
	case KindTicketRaised:
		return fmt.Sprintf("%s raised a ticket: %s", e.Actor, e.Detail)
	case KindBulkUpload:
		return fmt.Sprintf("Bulk upload completed: %s", e.Detail)
	default:
		return e.Detail
	}
}
