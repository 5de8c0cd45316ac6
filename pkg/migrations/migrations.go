// Package migrations holds the Go migrations for the books schema. Both the
// API (at startup) and cmd/migrations apply them.
package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

// Status describes where a database stands against the registered
// migrations.
type Status struct {
	Dialect   string
	Applied   migrate.MigrationSlice
	Unapplied migrate.MigrationSlice
	LastGroup *migrate.MigrationGroup
}

func NewMigrator(db *bun.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, Migrations)
}

// BringUpToDate creates the bookkeeping tables if needed and applies every
// pending migration as one group. The group ID is 0 when nothing was pending.
func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := NewMigrator(db)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}

// RollbackLast undoes the most recently applied group.
func RollbackLast(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	group, err := NewMigrator(db).Rollback(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}

func CurrentStatus(ctx context.Context, db *bun.DB) (*Status, error) {
	ms, err := NewMigrator(db).MigrationsWithStatus(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Status{
		Dialect:   db.Dialect().Name().String(),
		Applied:   ms.Applied(),
		Unapplied: ms.Unapplied(),
		LastGroup: ms.LastGroup(),
	}, nil
}
