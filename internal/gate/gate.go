// Package gate decides whether an identity may make another generation
// call under the free tier.
package gate

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/genius/server/genius/usage"
)

// returned by Acquire when a non-subscribed identity has used its free calls
var ErrLimitExceeded = errors.New("free tier limit exceeded")

// reports whether an identity holds an active subscription
type SubscriptionChecker interface {
	IsPro(ctx context.Context, userID string) (bool, error)
}

type Gate struct {
	ledger    usage.Ledger
	subs      SubscriptionChecker
	freeLimit int
}

// creates a gate over the ledger with the given free tier limit
func New(ledger usage.Ledger, subs SubscriptionChecker, freeLimit int) *Gate {
	return &Gate{
		ledger:    ledger,
		subs:      subs,
		freeLimit: freeLimit,
	}
}

// the configured free tier limit
func (g *Gate) FreeLimit() int {
	return g.freeLimit
}

// decides without side effects: subscribers always pass, everyone else
// passes while their count is below the free limit
func (g *Gate) Allow(ctx context.Context, userID string) (bool, error) {
	isPro, err := g.subs.IsPro(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}

	if isPro {
		return true, nil
	}

	count, err := g.ledger.Count(ctx, userID)
	if err != nil {
		return false, err
	}

	return count < g.freeLimit, nil
}

// admits one call, reserving a free tier slot atomically for
// non-subscribers; the returned grant must be settled with Commit or Release
func (g *Gate) Acquire(ctx context.Context, userID string) (*Grant, error) {
	isPro, err := g.subs.IsPro(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check subscription: %w", err)
	}

	if isPro {
		return &Grant{ledger: g.ledger, userID: userID, exempt: true}, nil
	}

	_, ok, err := g.ledger.IncrementIfBelow(ctx, userID, g.freeLimit)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrLimitExceeded
	}

	return &Grant{ledger: g.ledger, userID: userID, reserved: true}, nil
}

// one admitted call
type Grant struct {
	ledger   usage.Ledger
	userID   string
	exempt   bool
	reserved bool
	settled  bool
}

// reports whether the call was admitted through a subscription
func (g *Grant) Exempt() bool {
	return g.exempt
}

// records a successful call; subscribers are counted here since they
// reserved nothing up front
func (g *Grant) Commit(ctx context.Context) error {
	if g.settled {
		return nil
	}

	g.settled = true

	if g.exempt {
		if _, err := g.ledger.Increment(ctx, g.userID); err != nil {
			return fmt.Errorf("failed to record usage: %w", err)
		}
	}

	return nil
}

// returns the reserved slot after a failed call
func (g *Grant) Release(ctx context.Context) error {
	if g.settled {
		return nil
	}

	g.settled = true

	if g.reserved {
		if err := g.ledger.Release(ctx, g.userID); err != nil {
			return fmt.Errorf("failed to release usage: %w", err)
		}
	}

	return nil
}
