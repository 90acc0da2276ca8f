// Package domain holds the lead entity and the pure change-tracking rules
// (field diffing, transfer detection). Nothing in this package performs I/O.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lead statuses. StatusReEnquired is a query-side sentinel only: the literal
// string is never stored in the status column, the re_enquired flag is.
const (
	StatusNew        = "New"
	StatusContacted  = "Contacted"
	StatusFollowUp   = "Follow-up"
	StatusConverted  = "Converted"
	StatusClosed     = "Closed"
	StatusReEnquired = "Re-enquired"
)

// Wire-level field names. These are the keys recorded in audit entries and
// accepted by the diff engine; they match the stored column names.
const (
	FieldName              = "name"
	FieldEmail             = "email"
	FieldContact           = "contact"
	FieldWhatsapp          = "whatsapp"
	FieldSource            = "source"
	FieldStatus            = "status"
	FieldPrimaryCategory   = "primarycategory"
	FieldSecondaryCategory = "secondarycategory"
	FieldLeadOwner         = "leadowner"
	FieldRemarks           = "remarks"
)

// Actor identifies who performed a mutation. Supplied by the authentication
// layer and trusted as given.
type Actor struct {
	Name string
	Role string
}

// Lead is the central entity of the engine.
type Lead struct {
	ID                uuid.UUID
	LeadID            string // business identifier, immutable after creation
	Name              string
	Email             string
	Contact           string
	Whatsapp          string
	Source            string
	Status            string
	PrimaryCategory   string
	SecondaryCategory string
	LeadOwner         string
	Remarks           string
	ReEnquired        bool
	ReEnquiredAt      *time.Time
	UpdateLogs        []AuditEntry
	TransferLogs      []TransferLogEntry
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FieldValue returns the lead's current value for a wire-level field name.
// The second return is false for unknown fields.
func (l *Lead) FieldValue(field string) (any, bool) {
	switch field {
	case FieldName:
		return l.Name, true
	case FieldEmail:
		return l.Email, true
	case FieldContact:
		return l.Contact, true
	case FieldWhatsapp:
		return l.Whatsapp, true
	case FieldSource:
		return l.Source, true
	case FieldStatus:
		return l.Status, true
	case FieldPrimaryCategory:
		return l.PrimaryCategory, true
	case FieldSecondaryCategory:
		return l.SecondaryCategory, true
	case FieldLeadOwner:
		return l.LeadOwner, true
	case FieldRemarks:
		return l.Remarks, true
	default:
		return nil, false
	}
}

// SetField applies a wire-level field value to the lead. Unknown fields and
// non-string values are ignored.
func (l *Lead) SetField(field string, value any) {
	str, ok := value.(string)
	if !ok {
		return
	}
	switch field {
	case FieldName:
		l.Name = str
	case FieldEmail:
		l.Email = str
	case FieldContact:
		l.Contact = str
	case FieldWhatsapp:
		l.Whatsapp = str
	case FieldSource:
		l.Source = str
	case FieldStatus:
		l.Status = str
	case FieldPrimaryCategory:
		l.PrimaryCategory = str
	case FieldSecondaryCategory:
		l.SecondaryCategory = str
	case FieldLeadOwner:
		l.LeadOwner = str
	case FieldRemarks:
		l.Remarks = str
	}
}

// AuditEntry records one accepted mutation: who changed which fields, with
// per-field old/new values. Entries are append-only and owned by the lead.
type AuditEntry struct {
	UpdatedBy     string        `json:"updatedby"`
	UpdatedFields []string      `json:"updatedfields"`
	Changes       []FieldChange `json:"changes"`
	LogTime       time.Time     `json:"logtime"`
}

// TransferParty describes one side of a category transfer.
type TransferParty struct {
	Author            string `json:"author"`
	PrimaryCategory   string `json:"primarycategory"`
	SecondaryCategory string `json:"secondarycategory"`
}

// TransferLogEntry records a detected category reassignment. Informational:
// the category fields themselves change through the normal diff/audit path.
type TransferLogEntry struct {
	TransferredFrom TransferParty `json:"transferredfrom"`
	TransferredTo   TransferParty `json:"transferredto"`
	Remark          string        `json:"remark"`
	LogTime         time.Time     `json:"logtime"`
}
