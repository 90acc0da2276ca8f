// Package tickets implements the support-ticket flow: a ticket raised
// against a lead notifies the support inbox by mail and announces itself on
// the event bus. Tickets are not persisted; the notification trail is the
// record.
package tickets

import (
	"context"
	"fmt"
	"strings"

	"leadtrack_backend/internal/email"
	"leadtrack_backend/internal/events"
	leaddomain "leadtrack_backend/internal/leads/domain"
	leadservice "leadtrack_backend/internal/leads/service"
	"leadtrack_backend/platform/apperr"
	"leadtrack_backend/platform/config"
	"leadtrack_backend/platform/logger"
)

const opRaise = "tickets.service.raise"

type Service struct {
	leads  *leadservice.Service
	sender email.Sender
	bus    events.Bus
	cfg    config.EmailConfig
	log    *logger.Logger
}

func NewService(leads *leadservice.Service, sender email.Sender, bus events.Bus, cfg config.EmailConfig, log *logger.Logger) *Service {
	return &Service{
		leads:  leads,
		sender: sender,
		bus:    bus,
		cfg:    cfg,
		log:    log,
	}
}

// RaiseInput describes a new ticket. LeadID is optional: tickets can concern
// the system as a whole.
type RaiseInput struct {
	LeadID      string
	Title       string
	Description string
}

// Raise files a ticket. The support mail is best-effort: a delivery failure
// is logged and the ticket is still considered raised.
func (s *Service) Raise(ctx context.Context, actor leaddomain.Actor, in RaiseInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Validation("ticket title is required").WithOp(opRaise)
	}

	event := events.TicketRaised{
		BaseEvent:   events.NewBaseEvent(),
		SubjectName: actor.Name,
		Title:       strings.TrimSpace(in.Title),
		RaisedBy:    actor.Name,
	}

	if in.LeadID != "" {
		lead, err := s.leads.Get(ctx, in.LeadID)
		if err != nil {
			return err
		}
		event.LeadID = &lead.ID
		event.BusinessID = lead.LeadID
		event.SubjectName = lead.Name
		event.PrimaryCategory = lead.PrimaryCategory
		event.SecondaryCategory = lead.SecondaryCategory
	}

	subject := fmt.Sprintf("[Ticket] %s", event.Title)
	body := ticketBody(actor, event.BusinessID, in)
	if err := s.sender.Send(ctx, s.cfg.GetSupportEmail(), subject, body); err != nil {
		s.log.Error("ticket mail failed", "title", event.Title, "error", err)
	}

	s.bus.Publish(ctx, event)
	return nil
}

func ticketBody(actor leaddomain.Actor, businessID string, in RaiseInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket raised by %s (%s)\n\n", actor.Name, actor.Role)
	if businessID != "" {
		fmt.Fprintf(&b, "Lead: %s\n\n", businessID)
	}
	fmt.Fprintf(&b, "%s\n", strings.TrimSpace(in.Description))
	return b.String()
}
