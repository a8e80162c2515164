package subscriptions

const (
	queryGetByUserID = `
		SELECT user_id, stripe_customer_id, stripe_subscription_id, stripe_price_id,
			stripe_current_period_end, created_at, updated_at
		FROM user_subscriptions
		WHERE user_id = $1
	`

	// empty ids are stored as NULL
	queryUpsertSubscription = `
		INSERT INTO user_subscriptions (
			user_id, stripe_customer_id, stripe_subscription_id, stripe_price_id, stripe_current_period_end
		)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5)
		ON CONFLICT (user_id)
		DO UPDATE SET
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			stripe_price_id = EXCLUDED.stripe_price_id,
			stripe_current_period_end = EXCLUDED.stripe_current_period_end,
			updated_at = NOW()
	`

	queryRenewSubscription = `
		UPDATE user_subscriptions
		SET stripe_price_id = COALESCE(NULLIF($1, ''), stripe_price_id), stripe_current_period_end = $2, updated_at = NOW()
		WHERE stripe_subscription_id = $3
	`
)
