package subscriptions

import "time"

// subscriptions stay active for a day past the paid period so renewals
// that land late don't lock anyone out
const gracePeriod = 24 * time.Hour

// a user's billing subscription as mirrored from Stripe
type Subscription struct {
	UserID           string
	CustomerID       string
	SubscriptionID   string
	PriceID          string
	CurrentPeriodEnd *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// reports whether the subscription exempts its owner from the free tier
func (s *Subscription) IsActive(now time.Time) bool {
	if s == nil || s.PriceID == "" || s.CurrentPeriodEnd == nil {
		return false
	}

	return s.CurrentPeriodEnd.Add(gracePeriod).After(now)
}

type UpdateKind string

const (
	// first payment through checkout, keyed by user
	UpdateCreated UpdateKind = "created"

	// recurring payment, keyed by subscription
	UpdateRenewed UpdateKind = "renewed"
)

// a subscription change extracted from a billing webhook
type Update struct {
	Kind             UpdateKind
	UserID           string
	CustomerID       string
	SubscriptionID   string
	PriceID          string
	CurrentPeriodEnd time.Time
}
