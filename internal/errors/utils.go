package errors

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/openai/openai-go"
	"github.com/stripe/stripe-go/v72"
)

// error categories for logs and metrics
const (
	CategoryDatabase   = "database"
	CategoryNetwork    = "network"
	CategoryValidation = "validation"
	CategoryAuth       = "auth"
	CategoryNotFound   = "not_found"
	CategoryTimeout    = "timeout"
	CategoryUpstream   = "upstream"
	CategoryUnknown    = "unknown"
)

// checked in order against the lowercased message of untyped errors
var keywordCategories = []struct {
	category string
	keywords []string
}{
	{CategoryTimeout, []string{"timeout", "deadline"}},
	{CategoryNotFound, []string{"not found", "no rows"}},
	{CategoryDatabase, []string{"database", "sql", "postgres", "pgx", "redis"}},
	{CategoryNetwork, []string{"connection", "network", "dial"}},
	{CategoryValidation, []string{"validation", "invalid", "required"}},
	{CategoryAuth, []string{"unauthorized", "forbidden", "permission", "auth"}},
}

// Category buckets an error by its origin
func Category(err error) string {
	if err == nil {
		return CategoryUnknown
	}

	var pgErr *pgconn.PgError
	var apiErr *openai.Error
	var stripeErr *stripe.Error

	switch {
	case errors.As(err, &pgErr):
		return CategoryDatabase
	case errors.Is(err, pgx.ErrNoRows):
		return CategoryNotFound
	case errors.As(err, &apiErr), errors.As(err, &stripeErr):
		return CategoryUpstream
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CategoryTimeout
	}

	msg := strings.ToLower(err.Error())
	for _, kc := range keywordCategories {
		for _, kw := range kc.keywords {
			if strings.Contains(msg, kw) {
				return kc.category
			}
		}
	}

	return CategoryUnknown
}
