package remote

import "fmt"

// Operation names used in ProviderError.
const (
	OpSelect = "select"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ProviderError is returned for every failed remote call.
type ProviderError struct {
	Table  string
	Op     string
	Status int // HTTP status when known, 0 otherwise
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote %s on %s failed (status %d): %v", e.Op, e.Table, e.Status, e.Err)
	}
	return fmt.Sprintf("remote %s on %s failed: %v", e.Op, e.Table, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
