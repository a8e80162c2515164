package main

import (
	"context"
	"fmt"
	"io"

	"codeberg.org/genius/server/genius/usage"
	"codeberg.org/genius/server/internal/auth"
	"codeberg.org/genius/server/internal/config"
	"codeberg.org/genius/server/internal/database"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "geniusctl",
		Usage: "Administer the genius server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "PostgreSQL database connection URL",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis connection URL",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "ledger",
				Value:   config.LedgerPostgres,
				Usage:   "Usage ledger backend (postgres or redis)",
				Sources: cli.EnvVars("LEDGER_BACKEND"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations",
				Action: runMigrate,
			},
			{
				Name:  "token",
				Usage: "Issue a JWT for local testing, signed with JWT_SECRET",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Usage: "User id to embed", Required: true},
					&cli.StringFlag{Name: "email", Usage: "Email to embed"},
					&cli.DurationFlag{Name: "ttl", Value: auth.DefaultTokenTTL, Usage: "Token lifetime"},
				},
				Action: runToken,
			},
			{
				Name:  "usage",
				Usage: "Inspect or reset usage counters",
				Commands: []*cli.Command{
					{
						Name:      "get",
						Usage:     "Print the call count for a user",
						ArgsUsage: "<user-id>",
						Action:    runUsageGet,
					},
					{
						Name:      "reset",
						Usage:     "Set the call count for a user back to zero",
						ArgsUsage: "<user-id>",
						Action:    runUsageReset,
					},
				},
			},
		},
	}
}

func runMigrate(_ context.Context, c *cli.Command) error {
	databaseURL := c.String("database-url")
	if databaseURL == "" {
		return fmt.Errorf("--database-url or DATABASE_URL is required")
	}

	if err := database.RunMigrations(databaseURL); err != nil {
		return err
	}

	version, dirty, err := database.MigrationVersion(databaseURL)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Root().Writer, "schema at version %d (dirty: %t)\n", version, dirty) //nolint:errcheck
	return nil
}

func runToken(_ context.Context, c *cli.Command) error {
	token, err := auth.GenerateJWTWithTTL(c.String("user"), c.String("email"), c.Duration("ttl"))
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Fprintln(c.Root().Writer, token) //nolint:errcheck
	return nil
}

func runUsageGet(ctx context.Context, c *cli.Command) error {
	return withLedger(ctx, c, func(ledger usage.Ledger, userID string, out io.Writer) error {
		count, err := ledger.Count(ctx, userID)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s: %d\n", userID, count) //nolint:errcheck
		return nil
	})
}

func runUsageReset(ctx context.Context, c *cli.Command) error {
	return withLedger(ctx, c, func(ledger usage.Ledger, userID string, out io.Writer) error {
		if err := ledger.Reset(ctx, userID); err != nil {
			return err
		}

		fmt.Fprintf(out, "%s: reset\n", userID) //nolint:errcheck
		return nil
	})
}

// opens the configured ledger for the user id given as the first argument
func withLedger(ctx context.Context, c *cli.Command, fn func(ledger usage.Ledger, userID string, out io.Writer) error) error {
	userID := c.Args().First()
	if userID == "" {
		return fmt.Errorf("user id argument is required")
	}

	root := c.Root()

	switch backend := root.String("ledger"); backend {
	case config.LedgerPostgres:
		databaseURL := root.String("database-url")
		if databaseURL == "" {
			return fmt.Errorf("--database-url or DATABASE_URL is required")
		}

		db, err := database.NewPool(ctx, databaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		return fn(usage.NewPostgresStore(db), userID, root.Writer)

	case config.LedgerRedis:
		redisURL := root.String("redis-url")
		if redisURL == "" {
			return fmt.Errorf("--redis-url or REDIS_URL is required")
		}

		store, err := usage.NewRedisStoreFromURL(redisURL)
		if err != nil {
			return err
		}
		defer store.Client().Close() //nolint:errcheck

		return fn(store, userID, root.Writer)

	default:
		return fmt.Errorf("unsupported ledger backend: %s", backend)
	}
}
