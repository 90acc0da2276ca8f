// Package transport defines the wire shapes for the leads API.
package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"leadtrack_backend/internal/leads/domain"
	"leadtrack_backend/internal/leads/service"
)

// CreateLeadRequest is a new lead submission.
type CreateLeadRequest struct {
	Name              string `json:"name" validate:"required,min=1,max=200"`
	Email             string `json:"email" validate:"omitempty,email"`
	Contact           string `json:"contact" validate:"omitempty,max=20"`
	Whatsapp          string `json:"whatsapp" validate:"omitempty,max=20"`
	Source            string `json:"source" validate:"omitempty,max=100"`
	PrimaryCategory   string `json:"primarycategory" validate:"omitempty,max=100"`
	SecondaryCategory string `json:"secondarycategory" validate:"omitempty,max=100"`
	LeadOwner         string `json:"leadowner" validate:"omitempty,max=100"`
	Remarks           string `json:"remarks" validate:"omitempty,max=2000"`
}

// ToInput converts the request to the service input.
func (r CreateLeadRequest) ToInput() service.CreateInput {
	return service.CreateInput{
		Name:              r.Name,
		Email:             r.Email,
		Contact:           r.Contact,
		Whatsapp:          r.Whatsapp,
		Source:            r.Source,
		PrimaryCategory:   r.PrimaryCategory,
		SecondaryCategory: r.SecondaryCategory,
		LeadOwner:         r.LeadOwner,
		Remarks:           r.Remarks,
	}
}

// transferRemarkKey is a reserved key in the update payload carrying the
// optional transfer remark; it is not a lead field.
const transferRemarkKey = "transferremark"

var updatableFields = map[string]struct{}{
	domain.FieldName:              {},
	domain.FieldEmail:             {},
	domain.FieldContact:           {},
	domain.FieldWhatsapp:          {},
	domain.FieldSource:            {},
	domain.FieldStatus:            {},
	domain.FieldPrimaryCategory:   {},
	domain.FieldSecondaryCategory: {},
	domain.FieldLeadOwner:         {},
	domain.FieldRemarks:           {},
}

// DecodeUpdate parses a partial-update body. The top-level object's keys are
// consumed in document order so the audit entry lists changes the way the
// caller sent them; a struct decode would lose that order. Unknown keys are
// rejected rather than silently dropped.
func DecodeUpdate(r io.Reader) (service.UpdateInput, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return service.UpdateInput{}, fmt.Errorf("malformed update payload: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return service.UpdateInput{}, fmt.Errorf("update payload must be a JSON object")
	}

	var in service.UpdateInput
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return service.UpdateInput{}, fmt.Errorf("malformed update payload: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return service.UpdateInput{}, fmt.Errorf("malformed update payload")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return service.UpdateInput{}, fmt.Errorf("malformed value for %q: %w", key, err)
		}

		if key == transferRemarkKey {
			var remark string
			if err := json.Unmarshal(raw, &remark); err != nil {
				return service.UpdateInput{}, fmt.Errorf("transfer remark must be a string")
			}
			in.TransferRemark = remark
			continue
		}

		if _, known := updatableFields[key]; !known {
			return service.UpdateInput{}, fmt.Errorf("unknown field %q", key)
		}

		// Every updatable lead field is a string. Rejecting anything else
		// here keeps non-applicable values out of the audit trail.
		var value *string
		if err := json.Unmarshal(raw, &value); err != nil || value == nil {
			return service.UpdateInput{}, fmt.Errorf("field %q must be a string", key)
		}
		in.Updates = append(in.Updates, domain.FieldUpdate{Field: key, Value: *value})
	}

	return in, nil
}

// RemarkRequest attaches a remark to a lead.
type RemarkRequest struct {
	Remark string `json:"remark" validate:"required,min=1,max=2000"`
}

// LeadResponse is the outbound lead shape, trails included.
type LeadResponse struct {
	ID                string                    `json:"id"`
	LeadID            string                    `json:"leadId"`
	Name              string                    `json:"name"`
	Email             string                    `json:"email"`
	Contact           string                    `json:"contact"`
	Whatsapp          string                    `json:"whatsapp"`
	Source            string                    `json:"source"`
	Status            string                    `json:"status"`
	PrimaryCategory   string                    `json:"primarycategory"`
	SecondaryCategory string                    `json:"secondarycategory"`
	LeadOwner         string                    `json:"leadowner"`
	Remarks           string                    `json:"remarks"`
	ReEnquired        bool                      `json:"reEnquired"`
	ReEnquiredAt      *time.Time                `json:"reEnquiredAt,omitempty"`
	UpdateLogs        []domain.AuditEntry       `json:"updatelogs"`
	TransferLogs      []domain.TransferLogEntry `json:"transferredtologs"`
	CreatedAt         time.Time                 `json:"createdAt"`
	UpdatedAt         time.Time                 `json:"updatedAt"`
}

// FromLead converts a domain lead to its response shape.
func FromLead(l *domain.Lead) LeadResponse {
	updateLogs := l.UpdateLogs
	if updateLogs == nil {
		updateLogs = []domain.AuditEntry{}
	}
	transferLogs := l.TransferLogs
	if transferLogs == nil {
		transferLogs = []domain.TransferLogEntry{}
	}
	return LeadResponse{
		ID:                l.ID.String(),
		LeadID:            l.LeadID,
		Name:              l.Name,
		Email:             l.Email,
		Contact:           l.Contact,
		Whatsapp:          l.Whatsapp,
		Source:            l.Source,
		Status:            l.Status,
		PrimaryCategory:   l.PrimaryCategory,
		SecondaryCategory: l.SecondaryCategory,
		LeadOwner:         l.LeadOwner,
		Remarks:           l.Remarks,
		ReEnquired:        l.ReEnquired,
		ReEnquiredAt:      l.ReEnquiredAt,
		UpdateLogs:        updateLogs,
		TransferLogs:      transferLogs,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// FromLeads converts a page of leads.
func FromLeads(leads []domain.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for i := range leads {
		out = append(out, FromLead(&leads[i]))
	}
	return out
}

// QueryResponse is the paginated query answer.
type QueryResponse struct {
	Leads        []LeadResponse `json:"leads"`
	StatusCounts map[string]int `json:"statusCounts"`
	TotalCount   int            `json:"totalCount"`
	TotalPages   int            `json:"totalPages"`
}

// FromQueryResult converts a service query result.
func FromQueryResult(res service.QueryResult) QueryResponse {
	return QueryResponse{
		Leads:        FromLeads(res.Leads),
		StatusCounts: res.StatusCounts,
		TotalCount:   res.TotalCount,
		TotalPages:   res.TotalPages,
	}
}
