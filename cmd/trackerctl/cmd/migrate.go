package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/issue-tracker/internal/persistence"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		dir := migrationsDir
		if dir == "" {
			dir = e.cfg.Postgres.MigrationsDir
		}
		applied, err := persistence.RunMigrations(cmd.Context(), e.pg.PoolHandle(), dir, e.logger)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "migrations directory (default: POSTGRES_MIGRATIONS_DIR)")
}
