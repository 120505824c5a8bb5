package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports a record that fails a write precondition. It is
// raised before the record reaches the store and is never persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s %s", e.Field, e.Reason)
}

// Validate checks the write preconditions for a record. The store never
// re-checks these; every producing caller must validate first.
func (r *ProductRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if r.ShelfLifeValue < 1 {
		return &ValidationError{Field: "shelf_life_value", Reason: "must be >= 1"}
	}
	if !KnownUnit(r.ShelfLifeUnit) {
		return &ValidationError{Field: "shelf_life_unit", Reason: fmt.Sprintf("unknown unit %q", r.ShelfLifeUnit)}
	}
	if !KnownCategory(r.Category) {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", r.Category)}
	}
	if !KnownSubcategory(r.Category, r.Subcategory) {
		return &ValidationError{Field: "subcategory", Reason: fmt.Sprintf("%q does not belong to category %q", r.Subcategory, r.Category)}
	}
	if r.OpenedAt.IsZero() {
		return &ValidationError{Field: "opened_at", Reason: "must be set"}
	}
	return nil
}
