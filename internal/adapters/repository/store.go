// Package repository defines the prediction record store interface and its
// BadgerDB-backed implementation.
package repository

import (
	"context"
	"time"

	"github.com/okian/glyco/internal/domain/validate"
)

// Record is one durably stored scoring outcome. Records are created exactly
// once per successful scoring call and are immutable afterwards.
type Record struct {
	ID          uint64         `json:"id"`
	CreatedAt   time.Time      `json:"created_at"` // UTC, RFC 3339 on the wire
	Input       validate.Input `json:"input"`
	Probability float64        `json:"prob"`
	Result      int            `json:"result"` // 1 high risk, 0 low risk
}

// Store provides append-only persistence for prediction records.
type Store interface {
	// Create persists a new record and returns its identifier. Identifiers
	// are unique and monotonically increasing; the record is durably
	// committed before the identifier is returned.
	Create(ctx context.Context, input validate.Input, probability float64, result bool) (uint64, error)

	// Get returns the record with the given id, or ErrNotFound.
	Get(ctx context.Context, id uint64) (Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) int

	// Close releases the underlying storage.
	Close() error
}
