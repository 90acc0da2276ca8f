// Package service implements the lead write path (diff, audit, transfer
// detection, event publication) and the read path (role-scoped filtered
// queries with the recent-window slice).
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadtrack_backend/internal/events"
	"leadtrack_backend/internal/leads/domain"
	"leadtrack_backend/platform/apperr"
	"leadtrack_backend/platform/config"
	"leadtrack_backend/platform/logger"
	"leadtrack_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	opCreate    = "leads.service.create"
	opUpdate    = "leads.service.update"
	opDelete    = "leads.service.delete"
	opAddRemark = "leads.service.add_remark"
	opGet       = "leads.service.get"

	// createIDRetries bounds the identifier-collision retry loop.
	createIDRetries = 5
)

type Service struct {
	store  Store
	bus    events.Bus
	scopes *ScopeTable
	cfg    config.QueryConfig
	log    *logger.Logger
	now    func() time.Time
}

func New(store Store, bus events.Bus, scopes *ScopeTable, cfg config.QueryConfig, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		bus:    bus,
		scopes: scopes,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// CreateInput carries a new lead submission. Phone fields are normalized
// before the re-enquiry match so formatting variants of the same number
// still collide.
type CreateInput struct {
	Name              string
	Email             string
	Contact           string
	Whatsapp          string
	Source            string
	PrimaryCategory   string
	SecondaryCategory string
	LeadOwner         string
	Remarks           string
}

// Create records a new lead. The business identifier is generated fresh and
// regenerated on collision a bounded number of times. A submission matching
// an existing contact point is flagged re-enquired rather than rejected.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Lead, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("lead name is required").WithOp(opCreate)
	}

	now := s.now()
	lead := &domain.Lead{
		Name:              strings.TrimSpace(in.Name),
		Email:             strings.TrimSpace(in.Email),
		Contact:           phone.NormalizeE164(in.Contact),
		Whatsapp:          phone.NormalizeE164(in.Whatsapp),
		Source:            strings.TrimSpace(in.Source),
		Status:            domain.StatusNew,
		PrimaryCategory:   strings.TrimSpace(in.PrimaryCategory),
		SecondaryCategory: strings.TrimSpace(in.SecondaryCategory),
		LeadOwner:         strings.TrimSpace(in.LeadOwner),
		Remarks:           strings.TrimSpace(in.Remarks),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	matched, err := s.store.HasReEnquiryMatch(ctx, lead.Contact, lead.Email, lead.Whatsapp)
	if err != nil {
		return nil, err
	}
	if matched {
		lead.ReEnquired = true
		at := now
		lead.ReEnquiredAt = &at
	}

	if err := s.insertWithFreshID(ctx, lead, now); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:         events.NewBaseEvent(),
		LeadID:            lead.ID,
		BusinessID:        lead.LeadID,
		Name:              lead.Name,
		PrimaryCategory:   lead.PrimaryCategory,
		SecondaryCategory: lead.SecondaryCategory,
		ReEnquired:        lead.ReEnquired,
	})

	// A lead born with a department counts as its one assignment transition.
	if lead.PrimaryCategory != "" {
		s.publishAssigned(ctx, lead, actor.Name)
	}

	return lead, nil
}

func (s *Service) insertWithFreshID(ctx context.Context, lead *domain.Lead, now time.Time) error {
	var lastErr error
	for attempt := 0; attempt < createIDRetries; attempt++ {
		lead.ID = uuid.New()
		lead.LeadID = domain.NewLeadID(now)

		err := s.store.Insert(ctx, lead)
		if err == nil {
			return nil
		}
		if !apperr.Is(err, apperr.KindConflict) {
			return err
		}
		lastErr = err
	}
	return apperr.Wrap(apperr.KindConflict, "could not allocate a unique lead identifier", lastErr).WithOp(opCreate)
}

// UpdateInput is a partial update: only the listed fields are considered. The
// slice order is preserved into the audit entry.
type UpdateInput struct {
	Updates []domain.FieldUpdate
	// TransferRemark is free text recorded only when the update turns out to
	// be a transfer.
	TransferRemark string
}

// Update applies a partial update to a lead. Values must be strings (every
// updatable field is one); anything else is a validation error with no write.
// The change set is diffed against the stored record; when non-empty, exactly
// one audit entry is appended and the whole document is replaced conditionally
// on its version. A no-op update writes nothing.
func (s *Service) Update(ctx context.Context, actor domain.Actor, leadID string, in UpdateInput) (*domain.Lead, error) {
	lead, _, err := s.applyUpdate(ctx, actor, leadID, in)
	return lead, err
}

// applyUpdate is the single write path behind Update and AddRemark. The
// boolean reports whether anything was written.
func (s *Service) applyUpdate(ctx context.Context, actor domain.Actor, leadID string, in UpdateInput) (*domain.Lead, bool, error) {
	for _, upd := range in.Updates {
		if _, ok := upd.Value.(string); !ok {
			return nil, false, apperr.Validation(fmt.Sprintf("field %q must be a string", upd.Field)).WithOp(opUpdate)
		}
	}

	lead, err := s.store.GetByLeadID(ctx, leadID)
	if err != nil {
		return nil, false, err
	}

	diff := domain.Diff(lead, in.Updates)
	if len(diff.ChangedFields) == 0 {
		return lead, false, nil
	}

	now := s.now()
	priorPrimary := lead.PrimaryCategory
	priorStatus := lead.Status

	// Transfer detection looks at the lead as it was before the mutation.
	newPrimary, newSecondary := categoryUpdates(in.Updates)
	transfer, transferred := domain.DetectTransfer(lead, actor, newPrimary, newSecondary, in.TransferRemark, now)

	for _, upd := range in.Updates {
		lead.SetField(upd.Field, upd.Value)
	}
	lead.UpdateLogs = append(lead.UpdateLogs, domain.AuditEntry{
		UpdatedBy:     actor.Name,
		UpdatedFields: diff.ChangedFields,
		Changes:       diff.Changes,
		LogTime:       now,
	})
	if transferred {
		lead.TransferLogs = append(lead.TransferLogs, transfer)
	}
	lead.UpdatedAt = now

	if err := s.store.Replace(ctx, lead); err != nil {
		return nil, false, err
	}

	if priorPrimary == "" && lead.PrimaryCategory != "" {
		s.publishAssigned(ctx, lead, actor.Name)
	}
	if priorStatus != domain.StatusConverted && lead.Status == domain.StatusConverted {
		s.bus.Publish(ctx, events.LeadConverted{
			BaseEvent:         events.NewBaseEvent(),
			LeadID:            lead.ID,
			BusinessID:        lead.LeadID,
			Name:              lead.Name,
			PrimaryCategory:   lead.PrimaryCategory,
			SecondaryCategory: lead.SecondaryCategory,
			ConvertedBy:       actor.Name,
		})
	}
	if transferred {
		s.bus.Publish(ctx, events.LeadTransferred{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       lead.ID,
			BusinessID:   lead.LeadID,
			Name:         lead.Name,
			FromCategory: transfer.TransferredFrom.PrimaryCategory,
			ToCategory:   transfer.TransferredTo.PrimaryCategory,
			Author:       actor.Name,
		})
	}

	return lead, true, nil
}

// AddRemark records a remark through the normal diff/audit path and announces
// it. An unchanged remark is a no-op with no announcement. The lead is read
// once; the no-op check rides on the diff.
func (s *Service) AddRemark(ctx context.Context, actor domain.Actor, leadID, remark string) (*domain.Lead, error) {
	remark = strings.TrimSpace(remark)
	if remark == "" {
		return nil, apperr.Validation("remark must not be empty").WithOp(opAddRemark)
	}

	updated, changed, err := s.applyUpdate(ctx, actor, leadID, UpdateInput{
		Updates: []domain.FieldUpdate{{Field: domain.FieldRemarks, Value: remark}},
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return updated, nil
	}

	s.bus.Publish(ctx, events.RemarkAdded{
		BaseEvent:         events.NewBaseEvent(),
		LeadID:            updated.ID,
		BusinessID:        updated.LeadID,
		Name:              updated.Name,
		Remark:            remark,
		Author:            actor.Name,
		PrimaryCategory:   updated.PrimaryCategory,
		SecondaryCategory: updated.SecondaryCategory,
	})

	return updated, nil
}

// Delete removes a lead. Follow-ups cascade with it; notifications do not.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, leadID string) error {
	lead, err := s.store.GetByLeadID(ctx, leadID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, lead.ID); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.LeadDeleted{
		BaseEvent:         events.NewBaseEvent(),
		LeadID:            lead.ID,
		BusinessID:        lead.LeadID,
		Name:              lead.Name,
		PrimaryCategory:   lead.PrimaryCategory,
		SecondaryCategory: lead.SecondaryCategory,
		DeletedBy:         actor.Name,
	})

	return nil
}

// Get loads a lead by its business identifier, including both trails.
func (s *Service) Get(ctx context.Context, leadID string) (*domain.Lead, error) {
	if strings.TrimSpace(leadID) == "" {
		return nil, apperr.Validation("lead identifier is required").WithOp(opGet)
	}
	return s.store.GetByLeadID(ctx, leadID)
}

func (s *Service) publishAssigned(ctx context.Context, lead *domain.Lead, by string) {
	s.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent:         events.NewBaseEvent(),
		LeadID:            lead.ID,
		BusinessID:        lead.LeadID,
		Name:              lead.Name,
		PrimaryCategory:   lead.PrimaryCategory,
		SecondaryCategory: lead.SecondaryCategory,
		AssignedBy:        by,
	})
}

// categoryUpdates extracts the category values present in the update, if any.
func categoryUpdates(updates []domain.FieldUpdate) (primary, secondary *string) {
	for _, upd := range updates {
		str, ok := upd.Value.(string)
		if !ok {
			continue
		}
		switch upd.Field {
		case domain.FieldPrimaryCategory:
			v := str
			primary = &v
		case domain.FieldSecondaryCategory:
			v := str
			secondary = &v
		}
	}
	return primary, secondary
}
