package usage

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/genius/server/internal/database"
	"github.com/jackc/pgx/v5"
)

// implements Ledger on the user_api_limits table
type PostgresStore struct {
	db database.Pool
}

// creates a new Postgres-backed ledger
func NewPostgresStore(db database.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// returns the stored count, zero when the identity has no record
func (s *PostgresStore) Count(ctx context.Context, userID string) (int, error) {
	if err := validate(userID); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRow(ctx, queryGetCount, userID).Scan(&count)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get usage count: %w", err)
	}

	return count, nil
}

// adds one to the count, creating the record at 1 when missing
func (s *PostgresStore) Increment(ctx context.Context, userID string) (int, error) {
	if err := validate(userID); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRow(ctx, queryIncrement, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to increment usage count: %w", err)
	}

	return count, nil
}

// adds one only while the stored count is below limit
func (s *PostgresStore) IncrementIfBelow(ctx context.Context, userID string, limit int) (int, bool, error) {
	if err := validate(userID); err != nil {
		return 0, false, err
	}

	// a missing record would be inserted unconditionally
	if limit <= 0 {
		count, err := s.Count(ctx, userID)
		return count, false, err
	}

	var count int
	err := s.db.QueryRow(ctx, queryIncrementIfBelow, userID, limit).Scan(&count)

	if errors.Is(err, pgx.ErrNoRows) {
		current, err := s.Count(ctx, userID)
		return current, false, err
	}

	if err != nil {
		return 0, false, fmt.Errorf("failed to reserve usage: %w", err)
	}

	return count, true, nil
}

// takes back one increment, never going below zero
func (s *PostgresStore) Release(ctx context.Context, userID string) error {
	if err := validate(userID); err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, queryRelease, userID); err != nil {
		return fmt.Errorf("failed to release usage: %w", err)
	}

	return nil
}

// sets the count back to zero
func (s *PostgresStore) Reset(ctx context.Context, userID string) error {
	if err := validate(userID); err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, queryReset, userID); err != nil {
		return fmt.Errorf("failed to reset usage: %w", err)
	}

	return nil
}
