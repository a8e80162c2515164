package usage

const (
	queryGetCount = `
		SELECT count
		FROM user_api_limits
		WHERE user_id = $1
	`

	queryIncrement = `
		INSERT INTO user_api_limits (user_id, count)
		VALUES ($1, 1)
		ON CONFLICT (user_id)
		DO UPDATE SET
			count = user_api_limits.count + 1,
			updated_at = NOW()
		RETURNING count
	`

	// the WHERE guard turns the upsert into a no-op once the limit is hit,
	// so RETURNING yields no row
	queryIncrementIfBelow = `
		INSERT INTO user_api_limits (user_id, count)
		VALUES ($1, 1)
		ON CONFLICT (user_id)
		DO UPDATE SET
			count = user_api_limits.count + 1,
			updated_at = NOW()
		WHERE user_api_limits.count < $2
		RETURNING count
	`

	queryRelease = `
		UPDATE user_api_limits
		SET count = GREATEST(count - 1, 0), updated_at = NOW()
		WHERE user_id = $1
	`

	queryReset = `
		UPDATE user_api_limits
		SET count = 0, updated_at = NOW()
		WHERE user_id = $1
	`
)
