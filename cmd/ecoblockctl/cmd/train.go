package cmd

import (
	"errors"
	"fmt"
	"time"

	"ecoblock-backend/internal/application/prediction"
	"ecoblock-backend/internal/infrastructure/database"

	"github.com/bsm/redislock"
	"github.com/spf13/cobra"
)

const trainLockKey = "lock:model-train"

var (
	modelPath    string
	seed         int64
	testFraction float64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the usage model from stored materials and write it to the model file.",
	RunE:  trainRun,
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().StringVarP(&modelPath, "model-path", "m", "", "Output file (defaults to MODEL_PATH).")
	trainCmd.Flags().Int64Var(&seed, "seed", prediction.DefaultSeed, "Shuffle seed for the hold-out split.")
	trainCmd.Flags().Float64Var(&testFraction, "test-fraction", prediction.DefaultTestFraction, "Share of rows held out for evaluation.")
}

func trainRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	res, err := openResources(ctx, true)
	if err != nil {
		return err
	}
	defer res.Close()

	if res.Rdb != nil {
		lock, err := redislock.New(res.Rdb).Obtain(ctx, trainLockKey, 10*time.Minute, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			return errors.New("another training run is in progress")
		}
		if err != nil {
			return err
		}
		defer lock.Release(ctx)
	}

	path := modelPath
	if path == "" {
		path = cfg.ModelPath
	}
	t := &prediction.Trainer{
		Pairs:        &database.MaterialStore{DB: res.DB},
		Runs:         &database.ModelRunStore{DB: res.DB},
		ModelPath:    path,
		TestFraction: testFraction,
		Seed:         seed,
	}
	run, err := t.Train(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "model written to %s: slope=%.6f intercept=%.6f train=%d test=%d mse=%.4f\n",
		run.ModelPath, run.Slope, run.Intercept, run.TrainCount, run.TestCount, run.TestMSE)
	return nil
}
