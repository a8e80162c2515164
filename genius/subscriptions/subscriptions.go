// Package subscriptions stores which users pay for the pro tier and keeps
// that state in sync with Stripe.
package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/genius/server/internal/database"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound       = errors.New("subscription not found")
	ErrInvalidUpdate  = errors.New("invalid subscription update")
	ErrUnknownRenewal = errors.New("renewal for unknown subscription")
	ErrInvalidWebhook = errors.New("invalid webhook")
)

// persists subscriptions in user_subscriptions
type Repository struct {
	db  database.Pool
	now func() time.Time
}

// creates a new subscription repository
func NewRepository(db database.Pool) *Repository {
	return &Repository{db: db, now: time.Now}
}

// finds the subscription of a user
func (r *Repository) Get(ctx context.Context, userID string) (*Subscription, error) {
	var (
		sub            Subscription
		customerID     *string
		subscriptionID *string
		priceID        *string
	)

	err := r.db.QueryRow(ctx, queryGetByUserID, userID).Scan(
		&sub.UserID,
		&customerID,
		&subscriptionID,
		&priceID,
		&sub.CurrentPeriodEnd,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub.CustomerID = deref(customerID)
	sub.SubscriptionID = deref(subscriptionID)
	sub.PriceID = deref(priceID)

	return &sub, nil
}

// reports whether the user currently holds an active subscription
func (r *Repository) IsPro(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	sub, err := r.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return sub.IsActive(r.now()), nil
}

// writes a webhook update
func (r *Repository) Apply(ctx context.Context, update *Update) error {
	if update == nil {
		return ErrInvalidUpdate
	}

	switch update.Kind {
	case UpdateCreated:
		if update.UserID == "" || update.SubscriptionID == "" {
			return fmt.Errorf("%w: user and subscription ids are required", ErrInvalidUpdate)
		}

		_, err := r.db.Exec(ctx, queryUpsertSubscription,
			update.UserID,
			update.CustomerID,
			update.SubscriptionID,
			update.PriceID,
			update.CurrentPeriodEnd,
		)
		if err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}

		return nil

	case UpdateRenewed:
		if update.SubscriptionID == "" {
			return fmt.Errorf("%w: subscription id is required", ErrInvalidUpdate)
		}

		tag, err := r.db.Exec(ctx, queryRenewSubscription,
			update.PriceID,
			update.CurrentPeriodEnd,
			update.SubscriptionID,
		)
		if err != nil {
			return fmt.Errorf("failed to renew subscription: %w", err)
		}

		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", ErrUnknownRenewal, update.SubscriptionID)
		}

		return nil

	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidUpdate, update.Kind)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// treats every user as unsubscribed, for deployments without a database
type NoSubscriptions struct{}

func (NoSubscriptions) IsPro(context.Context, string) (bool, error) {
	return false, nil
}
