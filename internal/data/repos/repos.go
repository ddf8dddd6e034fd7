// Package repos holds the transactional persistence gateway. Every exported
// operation runs inside a single database transaction.
package repos

import "errors"

// ErrNotFound reports a missing row. Callers treat it as a business outcome
// (e.g. ineligibility), not a system failure.
var ErrNotFound = errors.New("record not found")
