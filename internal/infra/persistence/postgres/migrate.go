package postgres

import (
	"context"
	"embed"
	"log/slog"
	"sort"
	"strings"

	"storefront/internal/errors"

	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// RunMigrations applies embedded SQL files in lexical order, each in its own
// transaction, skipping files already recorded in schema_migrations.
func RunMigrations(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	names, err := migrationNames()
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Exec(createMigrationsTable).Error; err != nil {
		return errors.Wrap(err, "create schema_migrations")
	}

	var applied []string
	if err := db.WithContext(ctx).Raw("SELECT name FROM schema_migrations").Scan(&applied).Error; err != nil {
		return errors.Wrap(err, "list applied migrations")
	}
	done := make(map[string]bool, len(applied))
	for _, name := range applied {
		done[name] = true
	}

	for _, name := range names {
		if done[name] {
			continue
		}

		raw, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return errors.Wrapf(err, "read migration %s", name)
		}

		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(raw)).Error; err != nil {
				return errors.Wrapf(err, "exec migration %s", name)
			}

			return tx.Exec("INSERT INTO schema_migrations (name) VALUES (?)", name).Error
		})
		if err != nil {
			return err
		}

		logger.InfoContext(ctx, "Migration applied", slog.String("migration", name))
	}

	return nil
}

func migrationNames() ([]string, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, errors.Wrap(err, "read migrations dir")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names, nil
}
