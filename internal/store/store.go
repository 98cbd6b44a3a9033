// Package store holds types and sentinel errors shared by the persistence
// backends.
package store

import (
	"errors"
	"time"
)

// Sentinel errors returned by every backend, compared with errors.Is.
var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStoreCorrupted is returned when persisted state cannot be decoded.
	// Callers should abort rather than overwrite it.
	ErrStoreCorrupted = errors.New("store corrupted")
)

// Goal is a user's emission-reduction target.
type Goal struct {
	UserID                 string    `json:"user_id" db:"user_id"`
	TargetReductionPercent float64   `json:"target_reduction_percent" db:"target_reduction_percent"`
	Description            string    `json:"description" db:"description"`
	SetAt                  time.Time `json:"set_at" db:"set_at"`
}
