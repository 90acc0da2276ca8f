package service

import (
	"context"
	"strings"
	"testing"

	"leadtrack_backend/internal/leads/domain"
)

func TestImportCSVCountsRowFailuresWithoutAborting(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	svc := newTestService(store, bus)

	csvData := strings.Join([]string{
		"name,email,primarycategory",
		"Asha,asha@example.com,sales",
		",missing-name@example.com,sales",
		"Vikram,vikram@example.com,support",
	}, "\n")

	res, err := svc.ImportCSV(context.Background(), domain.Actor{Name: "admin", Role: "admin"}, "leads.csv", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Created != 2 {
		t.Fatalf("created = %d, want 2", res.Created)
	}
	if res.Failed != 1 {
		t.Fatalf("failed = %d, want 1", res.Failed)
	}
	if got := bus.countByName("leads.bulk_upload.completed"); got != 1 {
		t.Fatalf("bulk upload events = %d", got)
	}
	if got := bus.countByName("leads.lead.created"); got != 2 {
		t.Fatalf("created events = %d", got)
	}
}

func TestImportCSVRejectsEmptyFile(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeBus{})
	if _, err := svc.ImportCSV(context.Background(), domain.Actor{Name: "admin", Role: "admin"}, "empty.csv", strings.NewReader("")); err == nil {
		t.Fatal("empty file must be rejected")
	}
}

func TestImportCSVIgnoresUnknownColumns(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeBus{})

	csvData := "name,campaign_id\nAsha,xyz-123\n"
	res, err := svc.ImportCSV(context.Background(), domain.Actor{Name: "admin", Role: "admin"}, "leads.csv", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Created != 1 || res.Failed != 0 {
		t.Fatalf("result = %+v", res)
	}
}
