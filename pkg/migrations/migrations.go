// Package migrations holds the schema migrations. Each migration registers
// itself with Migrations from an init function.
package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

func NewMigrator(db *bun.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, Migrations)
}

// BringUpToDate applies every pending migration. The returned group has an ID
// of 0 when there was nothing to apply.
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

// Reset rolls back every applied group, newest first, and returns them in
// the order they were rolled back.
func Reset(ctx context.Context, db *bun.DB) ([]*migrate.MigrationGroup, error) {
	migrator := NewMigrator(db)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	groups := []*migrate.MigrationGroup{}
	for {
		group, err := migrator.Rollback(ctx)
		if err != nil {
			return groups, errors.WithStack(err)
		}
		if group.ID == 0 {
			return groups, nil
		}
		groups = append(groups, group)
	}
}
