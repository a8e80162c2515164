package subscriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subscriptionColumns = []string{
	"user_id", "stripe_customer_id", "stripe_subscription_id", "stripe_price_id",
	"stripe_current_period_end", "created_at", "updated_at",
}

func newMockRepository(t *testing.T, now time.Time) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repo := NewRepository(mock)
	repo.now = func() time.Time { return now }

	return repo, mock
}

func ptr[T any](v T) *T {
	return &v
}

func TestSubscription_IsActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name string
		sub  *Subscription
		want bool
	}{
		{"nil", nil, false},
		{"no price", &Subscription{CurrentPeriodEnd: ptr(now.Add(time.Hour))}, false},
		{"no period end", &Subscription{PriceID: "price_1"}, false},
		{"current period", &Subscription{PriceID: "price_1", CurrentPeriodEnd: ptr(now.Add(10 * 24 * time.Hour))}, true},
		{"inside grace period", &Subscription{PriceID: "price_1", CurrentPeriodEnd: ptr(now.Add(-23 * time.Hour))}, true},
		{"lapsed", &Subscription{PriceID: "price_1", CurrentPeriodEnd: ptr(now.Add(-25 * time.Hour))}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.sub.IsActive(now))
		})
	}
}

func TestRepository_Get(t *testing.T) {
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepository(t, now)
		periodEnd := now.Add(30 * 24 * time.Hour)

		mock.ExpectQuery(`FROM user_subscriptions\s+WHERE user_id = \$1`).
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows(subscriptionColumns).
				AddRow("u1", ptr("cus_1"), ptr("sub_1"), ptr("price_1"), &periodEnd, now, now))

		sub, err := repo.Get(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "cus_1", sub.CustomerID)
		assert.Equal(t, "sub_1", sub.SubscriptionID)
		assert.Equal(t, "price_1", sub.PriceID)
		require.NotNil(t, sub.CurrentPeriodEnd)
		assert.True(t, periodEnd.Equal(*sub.CurrentPeriodEnd))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepository(t, now)

		mock.ExpectQuery(`FROM user_subscriptions`).
			WithArgs("u1").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Get(context.Background(), "u1")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_IsPro(t *testing.T) {
	now := time.Now()

	t.Run("active subscriber", func(t *testing.T) {
		repo, mock := newMockRepository(t, now)
		periodEnd := now.Add(time.Hour)

		mock.ExpectQuery(`FROM user_subscriptions`).
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows(subscriptionColumns).
				AddRow("u1", ptr("cus_1"), ptr("sub_1"), ptr("price_1"), &periodEnd, now, now))

		isPro, err := repo.IsPro(context.Background(), "u1")
		require.NoError(t, err)
		assert.True(t, isPro)
	})

	t.Run("no subscription", func(t *testing.T) {
		repo, mock := newMockRepository(t, now)

		mock.ExpectQuery(`FROM user_subscriptions`).
			WithArgs("u1").
			WillReturnError(pgx.ErrNoRows)

		isPro, err := repo.IsPro(context.Background(), "u1")
		require.NoError(t, err)
		assert.False(t, isPro)
	})

	t.Run("database failure is reported", func(t *testing.T) {
		repo, mock := newMockRepository(t, now)

		mock.ExpectQuery(`FROM user_subscriptions`).
			WithArgs("u1").
			WillReturnError(errors.New("connection refused"))

		_, err := repo.IsPro(context.Background(), "u1")
		assert.Error(t, err)
	})

	t.Run("empty identity", func(t *testing.T) {
		repo, mock := newMockRepository(t, now)

		isPro, err := repo.IsPro(context.Background(), "")
		require.NoError(t, err)
		assert.False(t, isPro)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Apply(t *testing.T) {
	now := time.Now()
	periodEnd := time.Unix(1767225600, 0).UTC()

	t.Run("created upserts by user", func(t *testing.T) {
		repo, mock := newMockRepository(t, now)

		mock.ExpectExec(`INSERT INTO user_subscriptions`).
			WithArgs("u1", "cus_1", "sub_1", "price_1", periodEnd).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Apply(context.Background(), &Update{
			Kind:             UpdateCreated,
			UserID:           "u1",
			CustomerID:       "cus_1",
			SubscriptionID:   "sub_1",
			PriceID:          "price_1",
			CurrentPeriodEnd: periodEnd,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("created stores empty ids as null", func(t *testing.T) {
		repo, mock := newMockRepository(t, now)

		mock.ExpectExec(`VALUES \(\$1, NULLIF\(\$2, ''\), NULLIF\(\$3, ''\), NULLIF\(\$4, ''\), \$5\)`).
			WithArgs("u1", "", "sub_1", "", periodEnd).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Apply(context.Background(), &Update{
			Kind:             UpdateCreated,
			UserID:           "u1",
			SubscriptionID:   "sub_1",
			CurrentPeriodEnd: periodEnd,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("renewed updates by subscription", func(t *testing.T) {
		repo, mock := newMockRepository(t, now)

		mock.ExpectExec(`UPDATE user_subscriptions`).
			WithArgs("price_1", periodEnd, "sub_1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Apply(context.Background(), &Update{
			Kind:             UpdateRenewed,
			SubscriptionID:   "sub_1",
			PriceID:          "price_1",
			CurrentPeriodEnd: periodEnd,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("renewal for unknown subscription", func(t *testing.T) {
		repo, mock := newMockRepository(t, now)

		mock.ExpectExec(`UPDATE user_subscriptions`).
			WithArgs("price_1", periodEnd, "sub_404").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Apply(context.Background(), &Update{
			Kind:             UpdateRenewed,
			SubscriptionID:   "sub_404",
			PriceID:          "price_1",
			CurrentPeriodEnd: periodEnd,
		})
		assert.ErrorIs(t, err, ErrUnknownRenewal)
	})

	t.Run("invalid updates", func(t *testing.T) {
		repo, mock := newMockRepository(t, now)

		assert.ErrorIs(t, repo.Apply(context.Background(), nil), ErrInvalidUpdate)
		assert.ErrorIs(t, repo.Apply(context.Background(), &Update{Kind: UpdateCreated}), ErrInvalidUpdate)
		assert.ErrorIs(t, repo.Apply(context.Background(), &Update{Kind: UpdateRenewed}), ErrInvalidUpdate)
		assert.ErrorIs(t, repo.Apply(context.Background(), &Update{Kind: "cancelled"}), ErrInvalidUpdate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNoSubscriptions(t *testing.T) {
	isPro, err := NoSubscriptions{}.IsPro(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, isPro)
}
