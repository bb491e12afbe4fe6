package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"

	"quizdesk/internal/config"
	"quizdesk/internal/infra/schema"
)

// NewMigrateCmd applies database migrations to the configured backend.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := migrateDatabase(cmd.Context(), cfg); err != nil {
				return err
			}
			log.Printf("migrations applied")
			return nil
		},
	}
}

func migrateDatabase(ctx context.Context, cfg config.Config) error {
	var db *bun.DB
	switch cfg.Database.Driver {
	case "sqlite":
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.Database.DSN)
		if err != nil {
			return err
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case "postgres":
		if cfg.Database.DSN == "" {
			return fmt.Errorf("postgres dsn not configured")
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case "memory":
		return nil
	default:
		return fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	defer db.Close()

	return schema.Migrate(ctx, db)
}
