package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"brevity/internal/config"
	"brevity/internal/persistence"
)

// NewMigrateCmd creates the migrate command for database migrations
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Manage database schema migrations.

Subcommands:
  up       Apply all pending migrations
  status   Show migration status

Applied versions are tracked in the schema_migrations table. Both Postgres and
SQLite are supported.

Examples:
  brevity migrate up
  brevity migrate status`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *persistence.MigrationManager) error {
				applied, err := m.Migrate(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *persistence.MigrationManager) error {
				status, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%-10s %-10s %s\n", "Version", "Status", "Description")
				pending := 0
				for _, s := range status {
					state := "applied"
					if !s.Applied {
						state = "pending"
						pending++
					}
					fmt.Fprintf(out, "%-10d %-10s %s\n", s.Version, state, s.Description)
				}
				fmt.Fprintf(out, "\nApplied: %d | Pending: %d | Total: %d\n", len(status)-pending, pending, len(status))
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(ctx context.Context, fn func(context.Context, *persistence.MigrationManager) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := persistence.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, persistence.NewMigrationManager(db))
}
