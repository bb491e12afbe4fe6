package schema

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations is applied through bun's migrator by the migrate command and the
// store constructors. Tables are built with the query builder so the same
// migration serves both dialects.
var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.NewCreateTable().
				Model((*UserRow)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
			_, err := db.NewCreateTable().
				Model((*ResultRow)(nil)).
				IfNotExists().
				ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.NewDropTable().Model((*ResultRow)(nil)).IfExists().Exec(ctx); err != nil {
				return err
			}
			_, err := db.NewDropTable().Model((*UserRow)(nil)).IfExists().Exec(ctx)
			return err
		},
	)
}

// Migrate initializes the migration tables and applies any pending
// migrations.
func Migrate(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	_, err := migrator.Migrate(ctx)
	return err
}
