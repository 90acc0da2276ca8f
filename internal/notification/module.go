// Package notification wires the dispatcher to the domain event stream.
// Every subscription swallows dispatch errors: notification delivery is
// best-effort and never part of a mutation's success contract.
package notification

import (
	"context"
	"fmt"
	"time"

	"leadtrack_backend/internal/events"
	apphttp "leadtrack_backend/internal/http"
	"leadtrack_backend/internal/notification/dispatcher"
	"leadtrack_backend/internal/notification/handler"
	"leadtrack_backend/internal/notification/repository"
	"leadtrack_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the notification bounded context.
type Module struct {
	dispatcher *dispatcher.Service
	handler    *handler.Handler
	log        *logger.Logger
}

// NewModule creates the notification module.
func NewModule(pool *pgxpool.Pool, ttl time.Duration, log *logger.Logger) *Module {
	repo := repository.New(pool)
	return &Module{
		dispatcher: dispatcher.New(repo, ttl, log),
		handler:    handler.New(repo),
		log:        log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// Dispatcher exposes the dispatcher for the scanners.
func (m *Module) Dispatcher() *dispatcher.Service {
	return m.dispatcher
}

// RegisterRoutes mounts notification routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/notifications")
	m.handler.RegisterRoutes(group)
}

// RegisterHandlers subscribes the dispatcher to the domain event stream.
func (m *Module) RegisterHandlers(bus events.Bus) {
	subscribe := func(name string, fn func(ctx context.Context, event events.Event) (dispatcher.Event, bool)) {
		bus.Subscribe(name, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
			payload, ok := fn(ctx, event)
			if !ok {
				return nil
			}
			if _, _, err := m.dispatcher.Notify(ctx, payload); err != nil {
				m.log.DispatchFailure(payload.Kind, payload.SubjectName, err)
			}
			// Dispatch errors stay here; the mutation already succeeded.
			return nil
		}))
	}

	subscribe(events.LeadAssigned{}.EventName(), func(_ context.Context, event events.Event) (dispatcher.Event, bool) {
		e, ok := event.(events.LeadAssigned)
		if !ok {
			return dispatcher.Event{}, false
		}
		return dispatcher.Event{
			Kind:              dispatcher.KindLeadAssigned,
			SubjectID:         &e.LeadID,
			SubjectName:       e.Name,
			PrimaryCategory:   e.PrimaryCategory,
			SecondaryCategory: e.SecondaryCategory,
			Actor:             e.AssignedBy,
		}, true
	})

	subscribe(events.LeadConverted{}.EventName(), func(_ context.Context, event events.Event) (dispatcher.Event, bool) {
		e, ok := event.(events.LeadConverted)
		if !ok {
			return dispatcher.Event{}, false
		}
		return dispatcher.Event{
			Kind:              dispatcher.KindLeadConversion,
			SubjectID:         &e.LeadID,
			SubjectName:       e.Name,
			PrimaryCategory:   e.PrimaryCategory,
			SecondaryCategory: e.SecondaryCategory,
			Actor:             e.ConvertedBy,
		}, true
	})

	subscribe(events.LeadDeleted{}.EventName(), func(_ context.Context, event events.Event) (dispatcher.Event, bool) {
		e, ok := event.(events.LeadDeleted)
		if !ok {
			return dispatcher.Event{}, false
		}
		// The lead row is gone; keep the notification subject-less so it
		// survives on its own.
		return dispatcher.Event{
			Kind:              dispatcher.KindLeadDeleted,
			SubjectName:       e.Name,
			PrimaryCategory:   e.PrimaryCategory,
			SecondaryCategory: e.SecondaryCategory,
			Actor:             e.DeletedBy,
		}, true
	})

	subscribe(events.RemarkAdded{}.EventName(), func(_ context.Context, event events.Event) (dispatcher.Event, bool) {
		e, ok := event.(events.RemarkAdded)
		if !ok {
			return dispatcher.Event{}, false
		}
		return dispatcher.Event{
			Kind:              dispatcher.KindNewRemark,
			SubjectID:         &e.LeadID,
			SubjectName:       e.Name,
			PrimaryCategory:   e.PrimaryCategory,
			SecondaryCategory: e.SecondaryCategory,
			Actor:             e.Author,
			Detail:            e.Remark,
		}, true
	})

	subscribe(events.TicketRaised{}.EventName(), func(_ context.Context, event events.Event) (dispatcher.Event, bool) {
		e, ok := event.(events.TicketRaised)
		if !ok {
			return dispatcher.Event{}, false
		}
		return dispatcher.Event{
			Kind:              dispatcher.KindTicketRaised,
			SubjectID:         e.LeadID,
			SubjectName:       e.SubjectName,
			PrimaryCategory:   e.PrimaryCategory,
			SecondaryCategory: e.SecondaryCategory,
			Actor:             e.RaisedBy,
			Detail:            e.Title,
		}, true
	})

	subscribe(events.BulkUploadCompleted{}.EventName(), func(_ context.Context, event events.Event) (dispatcher.Event, bool) {
		e, ok := event.(events.BulkUploadCompleted)
		if !ok {
			return dispatcher.Event{}, false
		}
		return dispatcher.Event{
			Kind:        dispatcher.KindBulkUpload,
			SubjectName: e.FileName,
			Actor:       e.UploadedBy,
			Detail:      fmt.Sprintf("%s: %d created, %d failed", e.FileName, e.Created, e.Failed),
		}, true
	})
}

var _ apphttp.Module = (*Module)(nil)
