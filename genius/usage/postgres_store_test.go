package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewPostgresStore(mock), mock
}

func TestPostgresStore_Count(t *testing.T) {
	t.Run("existing record", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT count\s+FROM user_api_limits`).
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

		count, err := store.Count(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing record", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT count\s+FROM user_api_limits`).
			WithArgs("u1").
			WillReturnError(pgx.ErrNoRows)

		count, err := store.Count(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT count\s+FROM user_api_limits`).
			WithArgs("u1").
			WillReturnError(errors.New("connection reset"))

		_, err := store.Count(context.Background(), "u1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty identity skips the database", func(t *testing.T) {
		store, mock := newMockStore(t)

		_, err := store.Count(context.Background(), "")
		assert.ErrorIs(t, err, ErrInvalidIdentity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Increment(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO user_api_limits`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	count, err := store.Increment(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_IncrementIfBelow(t *testing.T) {
	t.Run("granted", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectQuery(`(?s)INSERT INTO user_api_limits.*WHERE user_api_limits\.count < \$2`).
			WithArgs("u1", 5).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

		count, ok, err := store.IncrementIfBelow(context.Background(), "u1", 5)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refused at limit", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectQuery(`(?s)INSERT INTO user_api_limits.*WHERE user_api_limits\.count < \$2`).
			WithArgs("u1", 5).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`SELECT count\s+FROM user_api_limits`).
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))

		count, ok, err := store.IncrementIfBelow(context.Background(), "u1", 5)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 5, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero limit never inserts", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT count\s+FROM user_api_limits`).
			WithArgs("u1").
			WillReturnError(pgx.ErrNoRows)

		count, ok, err := store.IncrementIfBelow(context.Background(), "u1", 0)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 0, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectQuery(`INSERT INTO user_api_limits`).
			WithArgs("u1", 5).
			WillReturnError(errors.New("deadlock detected"))

		_, ok, err := store.IncrementIfBelow(context.Background(), "u1", 5)
		require.Error(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_ReleaseAndReset(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE user_api_limits\s+SET count = GREATEST\(count - 1, 0\)`).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE user_api_limits\s+SET count = 0`).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.Release(context.Background(), "u1"))
	require.NoError(t, store.Reset(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
