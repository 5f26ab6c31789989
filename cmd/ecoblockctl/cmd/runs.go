package cmd

import (
	"encoding/json"

	"ecoblock-backend/internal/infrastructure/database"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "last-run",
	Short: "Print the most recent training run.",
	RunE:  runsRun,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func runsRun(cmd *cobra.Command, args []string) error {
	res, err := openResources(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer res.Close()

	run, err := (&database.ModelRunStore{DB: res.DB}).Latest(cmd.Context())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}
