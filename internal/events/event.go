// Package events defines every domain event this engine publishes, one type
// per occurrence, named module.entity.action. The bus machinery lives in
// platform/events and is aliased here so publishers import a single package.
package events

import (
	"leadtrack_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is recorded.
type LeadCreated struct {
	BaseEvent
	LeadID            uuid.UUID `json:"leadId"`
	BusinessID        string    `json:"businessId"`
	Name              string    `json:"name"`
	PrimaryCategory   string    `json:"primaryCategory"`
	SecondaryCategory string    `json:"secondaryCategory"`
	ReEnquired        bool      `json:"reEnquired"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadAssigned is published exactly once per lead: on the transition from
// no primary category to a non-empty one. Later category changes do not
// re-publish it.
type LeadAssigned struct {
	BaseEvent
	LeadID            uuid.UUID `json:"leadId"`
	BusinessID        string    `json:"businessId"`
	Name              string    `json:"name"`
	PrimaryCategory   string    `json:"primaryCategory"`
	SecondaryCategory string    `json:"secondaryCategory"`
	AssignedBy        string    `json:"assignedBy"`
}

func (e LeadAssigned) EventName() string { return "leads.lead.assigned" }

// LeadConverted is published when a lead's status transitions to Converted.
type LeadConverted struct {
	BaseEvent
	LeadID            uuid.UUID `json:"leadId"`
	BusinessID        string    `json:"businessId"`
	Name              string    `json:"name"`
	PrimaryCategory   string    `json:"primaryCategory"`
	SecondaryCategory string    `json:"secondaryCategory"`
	ConvertedBy       string    `json:"convertedBy"`
}

func (e LeadConverted) EventName() string { return "leads.lead.converted" }

// LeadDeleted is published after a lead and its dependents are removed.
type LeadDeleted struct {
	BaseEvent
	LeadID            uuid.UUID `json:"leadId"`
	BusinessID        string    `json:"businessId"`
	Name              string    `json:"name"`
	PrimaryCategory   string    `json:"primaryCategory"`
	SecondaryCategory string    `json:"secondaryCategory"`
	DeletedBy         string    `json:"deletedBy"`
}

func (e LeadDeleted) EventName() string { return "leads.lead.deleted" }

// RemarkAdded is published when an actor attaches a remark to a lead.
type RemarkAdded struct {
	BaseEvent
	LeadID            uuid.UUID `json:"leadId"`
	BusinessID        string    `json:"businessId"`
	Name              string    `json:"name"`
	Remark            string    `json:"remark"`
	Author            string    `json:"author"`
	PrimaryCategory   string    `json:"primaryCategory"`
	SecondaryCategory string    `json:"secondaryCategory"`
}

func (e RemarkAdded) EventName() string { return "leads.remark.added" }

// LeadTransferred is published when a category transfer is detected and logged.
type LeadTransferred struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	BusinessID   string    `json:"businessId"`
	Name         string    `json:"name"`
	FromCategory string    `json:"fromCategory"`
	ToCategory   string    `json:"toCategory"`
	Author       string    `json:"author"`
}

func (e LeadTransferred) EventName() string { return "leads.lead.transferred" }

// BulkUploadCompleted is published after a bulk import finishes.
type BulkUploadCompleted struct {
	BaseEvent
	FileName   string `json:"fileName"`
	Created    int    `json:"created"`
	Failed     int    `json:"failed"`
	UploadedBy string `json:"uploadedBy"`
}

func (e BulkUploadCompleted) EventName() string { return "leads.bulk_upload.completed" }

// =============================================================================
// Ticket Domain Events
// =============================================================================

// TicketRaised is published when a support ticket is raised against a lead.
type TicketRaised struct {
	BaseEvent
	LeadID            *uuid.UUID `json:"leadId,omitempty"`
	BusinessID        string     `json:"businessId,omitempty"`
	SubjectName       string     `json:"subjectName"`
	Title             string     `json:"title"`
	RaisedBy          string     `json:"raisedBy"`
	PrimaryCategory   string     `json:"primaryCategory"`
	SecondaryCategory string     `json:"secondaryCategory"`
}

func (e TicketRaised) EventName() string { return "tickets.ticket.raised" }
