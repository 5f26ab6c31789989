package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ecoblock-backend/internal/application/prediction"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	dir := t.TempDir()
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL_TEST", "sqlite://"+filepath.Join(dir, "cli.db"))
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("MODEL_PATH", filepath.Join(dir, "model.json"))
	return dir
}

func TestPredict(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "m.json")
	require.NoError(t, prediction.SaveModel(path, prediction.LinearModel{Slope: 2, Intercept: 0.5}))

	out, err := run(t, "predict", "--model-path", path, "--carbon-savings", "10")
	require.NoError(t, err)
	assert.Equal(t, "21", strings.TrimSpace(out))
}

func TestImportTrainAndLastRun(t *testing.T) {
	dir := setupEnv(t)
	csvPath := filepath.Join(dir, "materials.csv")
	var b strings.Builder
	b.WriteString("material,quantity,source,carbon_savings,project_location,used_in_project,date_added,actual_usage\n")
	usage := []int{12, 21, 29, 41, 50, 58, 72, 79, 91, 99}
	for i, u := range usage {
		fmt.Fprintf(&b, "M%d,10,NatureBricks,%d,Pune,Hall,2024-01-%02d,%d\n", i+1, i+1, i+1, u)
	}
	require.NoError(t, os.WriteFile(csvPath, []byte(b.String()), 0o600))

	out, err := run(t, "import", "--file", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"inserted": 10`)

	modelPath = ""
	out, err = run(t, "train", "--seed", "42", "--test-fraction", "0.2")
	require.NoError(t, err)
	assert.Contains(t, out, "model written to")
	_, err = os.Stat(filepath.Join(dir, "model.json"))
	require.NoError(t, err)

	out, err = run(t, "last-run")
	require.NoError(t, err)
	assert.Contains(t, out, `"train_count": 8`)
	assert.Contains(t, out, `"test_count": 2`)
}

func TestMigrate(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	_, err = run(t, "migrate", "sideways")
	assert.Error(t, err)
}
