package cmd

import (
	"fmt"

	"ecoblock-backend/internal/application/prediction"

	"github.com/spf13/cobra"
)

var carbonSavings float64

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict actual usage for a carbon savings value with the current model file.",
	RunE:  predictRun,
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().Float64VarP(&carbonSavings, "carbon-savings", "c", 0, "Carbon savings of the material.")
	predictCmd.Flags().StringVarP(&modelPath, "model-path", "m", "", "Model file (defaults to MODEL_PATH).")
	_ = predictCmd.MarkFlagRequired("carbon-savings")
}

func predictRun(cmd *cobra.Command, args []string) error {
	path := modelPath
	if path == "" {
		path = cfg.ModelPath
	}
	m, err := prediction.LoadModel(path)
	if err != nil {
		return err
	}
	usage, err := m.Predict(carbonSavings)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), usage)
	return nil
}
