package domain

import "reflect"

// FieldUpdate is one key of an incoming partial update. Updates are carried
// as an ordered slice so the diff output order follows the incoming order.
type FieldUpdate struct {
	Field string
	Value any
}

// FieldChange is one changed field with its old and new values.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue any    `json:"oldValue"`
	NewValue any    `json:"newValue"`
}

// DiffResult is the field-level delta between a stored lead and an incoming
// partial update.
type DiffResult struct {
	ChangedFields []string
	Changes       []FieldChange
}

// Diff computes the field-level delta between the stored lead and an incoming
// partial update. A field is changed iff it is present in the update and its
// value differs from the stored one. Scalars compare by strict value equality
// with no type coercion; nested values compare by deep structural equality,
// order-sensitive for sequences. Fields absent from the update are never
// changed. Pure and deterministic.
func Diff(existing *Lead, incoming []FieldUpdate) DiffResult {
	result := DiffResult{
		ChangedFields: []string{},
		Changes:       []FieldChange{},
	}

	for _, upd := range incoming {
		oldValue, _ := existing.FieldValue(upd.Field)
		if equalValues(oldValue, upd.Value) {
			continue
		}
		result.ChangedFields = append(result.ChangedFields, upd.Field)
		result.Changes = append(result.Changes, FieldChange{
			Field:    upd.Field,
			OldValue: oldValue,
			NewValue: upd.Value,
		})
	}

	return result
}

// equalValues reports deep structural equality. reflect.DeepEqual already
// gives strict scalar semantics: a string "5" and a number 5 are different.
func equalValues(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	return reflect.DeepEqual(a, b)
}
