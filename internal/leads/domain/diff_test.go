package domain

import (
	"reflect"
	"testing"
)

func sampleLead() *Lead {
	return &Lead{
		LeadID:          "LD-20260101-0001",
		Name:            "Asha Rao",
		Email:           "asha@example.com",
		Contact:         "+919800000001",
		Status:          StatusNew,
		PrimaryCategory: "sales",
		LeadOwner:       "ravi",
	}
}

func TestDiffEmptyUpdateProducesNoChanges(t *testing.T) {
	lead := sampleLead()

	result := Diff(lead, nil)

	if len(result.ChangedFields) != 0 || len(result.Changes) != 0 {
		t.Fatalf("expected empty diff, got %+v", result)
	}
}

func TestDiffDetectsChangedFieldsInIncomingOrder(t *testing.T) {
	lead := sampleLead()

	result := Diff(lead, []FieldUpdate{
		{Field: FieldStatus, Value: StatusContacted},
		{Field: FieldName, Value: "Asha Rao"}, // unchanged
		{Field: FieldLeadOwner, Value: "meera"},
	})

	wantFields := []string{FieldStatus, FieldLeadOwner}
	if !reflect.DeepEqual(result.ChangedFields, wantFields) {
		t.Fatalf("changed fields = %v, want %v", result.ChangedFields, wantFields)
	}
	if result.Changes[0].OldValue != StatusNew || result.Changes[0].NewValue != StatusContacted {
		t.Fatalf("unexpected first change: %+v", result.Changes[0])
	}
	if result.Changes[1].OldValue != "ravi" || result.Changes[1].NewValue != "meera" {
		t.Fatalf("unexpected second change: %+v", result.Changes[1])
	}
}

func TestDiffDoesNotCoerceScalarTypes(t *testing.T) {
	lead := sampleLead()
	lead.Remarks = "5"

	result := Diff(lead, []FieldUpdate{{Field: FieldRemarks, Value: 5}})

	if len(result.ChangedFields) != 1 {
		t.Fatalf("string %q and number 5 must compare unequal, got %+v", lead.Remarks, result)
	}
}

func TestDiffDeepEqualityForNestedValues(t *testing.T) {
	lead := sampleLead()

	same := Diff(lead, []FieldUpdate{{Field: "tags", Value: []string{"hot", "web"}}})
	if len(same.ChangedFields) != 1 {
		t.Fatalf("unknown field with non-nil value should register as changed")
	}

	// Order-sensitive sequence comparison: a reordered slice is a change.
	a := []string{"a", "b"}
	b := []string{"b", "a"}
	if equalValues(a, b) {
		t.Fatal("reordered sequences must not compare equal")
	}
	if !equalValues([]string{"a", "b"}, []string{"a", "b"}) {
		t.Fatal("structurally equal sequences must compare equal")
	}
}

func TestDiffIsDeterministic(t *testing.T) {
	lead := sampleLead()
	incoming := []FieldUpdate{
		{Field: FieldStatus, Value: StatusConverted},
		{Field: FieldSecondaryCategory, Value: "enterprise"},
	}

	first := Diff(lead, incoming)
	second := Diff(lead, incoming)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("diff not deterministic: %+v vs %+v", first, second)
	}
}
