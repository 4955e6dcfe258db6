package catalog

import (
	"errors"
	"fmt"
)

// ErrNotMapped is returned by Resolve for audits without a product mapping.
// It is an expected outcome, not a failure.
var ErrNotMapped = errors.New("audit not mapped")

// NotMappedError carries the audit id that had no mapping.
type NotMappedError struct {
	AuditID string
}

func (e *NotMappedError) Error() string {
	return fmt.Sprintf("audit %q not mapped", e.AuditID)
}

func (e *NotMappedError) Unwrap() error {
	return ErrNotMapped
}
