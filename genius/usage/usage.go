// Package usage keeps the per-identity generation counter that backs the
// free tier.
package usage

import (
	"context"
	"errors"
)

// returned when an operation is attempted without an identity
var ErrInvalidIdentity = errors.New("usage: identity is required")

// durable per-identity counter of successful generation calls
//
// Count reports zero for identities that have no record yet. Increment
// creates the record on first use. IncrementIfBelow adds one only while the
// stored count is below limit and reports whether it did; on refusal the
// returned count is the unchanged current value. Release undoes one
// increment without going below zero. Reset sets the count back to zero.
type Ledger interface {
	Count(ctx context.Context, userID string) (int, error)
	Increment(ctx context.Context, userID string) (int, error)
	IncrementIfBelow(ctx context.Context, userID string, limit int) (int, bool, error)
	Release(ctx context.Context, userID string) error
	Reset(ctx context.Context, userID string) error
}

func validate(userID string) error {
	if userID == "" {
		return ErrInvalidIdentity
	}

	return nil
}
