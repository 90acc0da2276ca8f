package service

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"sync/atomic"

	"leadtrack_backend/internal/events"
	"leadtrack_backend/internal/leads/domain"
	"leadtrack_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

const opBulkImport = "leads.service.bulk_import"

// bulkImportWorkers bounds concurrent inserts so a large upload does not
// saturate the pool.
const bulkImportWorkers = 4

// BulkResult summarizes a finished import.
type BulkResult struct {
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// ImportCSV ingests a CSV of leads. The first row must be a header naming a
// subset of the wire-level field names; unknown columns are ignored. Row
// failures are counted, not fatal, so one bad row never aborts the upload.
func (s *Service) ImportCSV(ctx context.Context, actor domain.Actor, fileName string, r io.Reader) (BulkResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return BulkResult{}, apperr.Validation("csv file is empty or malformed").WithOp(opBulkImport)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var created, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkImportWorkers)

	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			failed.Add(1)
			continue
		}

		g.Go(func() error {
			in := rowToCreateInput(columns, row)
			if _, createErr := s.Create(gctx, actor, in); createErr != nil {
				failed.Add(1)
				s.log.Warn("bulk import row failed", "file", fileName, "error", createErr)
				return nil
			}
			created.Add(1)
			return nil
		})
	}

	_ = g.Wait()

	result := BulkResult{Created: int(created.Load()), Failed: int(failed.Load())}
	s.bus.Publish(ctx, events.BulkUploadCompleted{
		BaseEvent:  events.NewBaseEvent(),
		FileName:   fileName,
		Created:    result.Created,
		Failed:     result.Failed,
		UploadedBy: actor.Name,
	})

	return result, nil
}

func rowToCreateInput(columns, row []string) CreateInput {
	var in CreateInput
	for i, col := range columns {
		if i >= len(row) {
			break
		}
		value := strings.TrimSpace(row[i])
		switch col {
		case domain.FieldName:
			in.Name = value
		case domain.FieldEmail:
			in.Email = value
		case domain.FieldContact:
			in.Contact = value
		case domain.FieldWhatsapp:
			in.Whatsapp = value
		case domain.FieldSource:
			in.Source = value
		case domain.FieldPrimaryCategory:
			in.PrimaryCategory = value
		case domain.FieldSecondaryCategory:
			in.SecondaryCategory = value
		case domain.FieldLeadOwner:
			in.LeadOwner = value
		case domain.FieldRemarks:
			in.Remarks = value
		}
	}
	return in
}
