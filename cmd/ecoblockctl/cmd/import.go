package cmd

import (
	"encoding/json"
	"os"

	"ecoblock-backend/internal/application/imports"
	"ecoblock-backend/internal/infrastructure/database"

	"github.com/bsm/redislock"
	"github.com/spf13/cobra"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load materials from a CSV file, skipping existing (material, date_added) pairs.",
	RunE:  importRun,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to the CSV file.")
	_ = importCmd.MarkFlagRequired("file")
}

func importRun(cmd *cobra.Command, args []string) error {
	f, err := os.Open(importFile)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := openResources(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer res.Close()

	im := &imports.Importer{Store: &database.MaterialStore{DB: res.DB}}
	if res.Rdb != nil {
		im.Locker = redislock.New(res.Rdb)
	}
	out, err := im.Import(cmd.Context(), f)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
