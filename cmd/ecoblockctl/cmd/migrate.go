package cmd

import (
	"fmt"

	"ecoblock-backend/internal/infrastructure/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|status]",
	Short:     "Apply or inspect the database migrations.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "status"},
	RunE:      migrateRun,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func migrateRun(cmd *cobra.Command, args []string) error {
	action := "up"
	if len(args) == 1 {
		action = args[0]
	}
	res, err := openResources(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer res.Close()

	switch action {
	case "status":
		return database.MigrationStatus(res.DB, res.Dialect)
	default:
		if err := database.Migrate(res.DB, res.Dialect); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	}
}
