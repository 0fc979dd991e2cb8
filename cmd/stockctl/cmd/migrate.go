package cmd

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/stockpile-hq/stockpile/internal/db"
)

type dbFlags struct {
	driver string
	dsn    string
}

func (f *dbFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.driver, "driver", envOr("DB_DRIVER", "sqlite"), "database driver (sqlite, pgx)")
	cmd.PersistentFlags().StringVar(&f.dsn, "dsn", envOr("DB_CONNECTION", "./data/stockpile.db"), "database connection string")
}

func (f *dbFlags) open() (*sqlx.DB, error) {
	conn, err := db.Init(f.driver, f.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return conn, nil
}

func MigrateCmd() *cobra.Command {
	flags := &dbFlags{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	flags.register(cmd)

	cmd.AddCommand(migrateStep(flags, db.Up, "Apply all pending migrations"))
	cmd.AddCommand(migrateStep(flags, db.Down, "Roll back the latest migration"))
	cmd.AddCommand(migrateStep(flags, db.Status, "Show applied and pending migrations"))
	return cmd
}

func migrateStep(flags *dbFlags, dir db.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(dir),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := flags.open()
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			err = db.Migrate(cmd.Context(), conn.DB, flags.driver, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "==> migrate %s done (%s)\n", dir, flags.driver)
			return nil
		},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
