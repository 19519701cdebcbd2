package main

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/spitzerl/workshop-b3-api/internal/config"
	"github.com/spitzerl/workshop-b3-api/internal/store"

	_ "modernc.org/sqlite"
)

func newMigrateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var dryRun bool
	var inspect bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run or inspect database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inspect || dryRun {
				db, err := openRawDB(cfg.DBPath)
				if err != nil {
					return err
				}
				defer db.Close()

				plan, err := store.MigrationPlan(db)
				if err != nil {
					return fmt.Errorf("inspect migrations: %w", err)
				}
				if *jsonOutput {
					return writeJSON(plan)
				}
				return writeMigrationPlan(plan)
			}

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			st.Close()

			if *jsonOutput {
				db, err := openRawDB(cfg.DBPath)
				if err != nil {
					return err
				}
				defer db.Close()

				plan, err := store.MigrationPlan(db)
				if err != nil {
					return err
				}
				return writeJSON(plan)
			}
			return writePlain("Migrations applied successfully.\n")
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying")
	cmd.Flags().BoolVar(&inspect, "inspect", false, "show migration status")

	return cmd
}

func writeMigrationPlan(plan *store.MigrationStatus) error {
	if err := writePlain("Current version: %d\nAvailable version: %d\n", plan.CurrentVersion, plan.AvailableVersion); err != nil {
		return err
	}
	if len(plan.Pending) == 0 {
		return writePlain("No pending migrations.\n")
	}
	if err := writePlain("Pending migrations: %d\n", len(plan.Pending)); err != nil {
		return err
	}
	for _, m := range plan.Pending {
		if err := writePlain("  %d: %s\n", m.Version, m.Description); err != nil {
			return err
		}
	}
	return nil
}

func openRawDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	return sql.Open("sqlite", u.String())
}
