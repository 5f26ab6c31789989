// Package cmd contains the ecoblockctl maintenance commands.
package cmd

import (
	"context"
	"os"

	"ecoblock-backend/bootstrap"
	"ecoblock-backend/internal/config"
	"ecoblock-backend/internal/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	logLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Override LOG_LEVEL.")
}

var rootCmd = &cobra.Command{
	Use:           "ecoblockctl",
	Short:         "Maintenance tasks for the EcoBlock material service",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
		logger.Init(c.IsProduction(), c.LogLevel)
		cfg = c
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// openResources connects with the loaded config; migrate controls the automatic goose run.
func openResources(ctx context.Context, migrate bool) (*bootstrap.Resources, error) {
	c := *cfg
	c.MigrateOnStart = migrate
	return bootstrap.Open(ctx, &c)
}
