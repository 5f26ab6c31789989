// Package prediction fits and serves the single-feature usage model
// (carbon_savings -> actual_usage).
package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

var (
	ErrPredictionUnavailable = errors.New("usage prediction unavailable")
	ErrInvalidModel          = errors.New("invalid usage model")
)

// LinearModel is the persisted scoring function usage = Slope*carbon_savings + Intercept.
type LinearModel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

func (m LinearModel) validate() error {
	if !finite(m.Slope) || !finite(m.Intercept) {
		return fmt.Errorf("%w: non-finite coefficients", ErrInvalidModel)
	}
	return nil
}

// Score returns the unrounded model output for x.
func (m LinearModel) Score(x float64) float64 {
	return m.Slope*x + m.Intercept
}

// Predict rounds the model output to the nearest integer, halves away from zero.
func (m LinearModel) Predict(x float64) (int, error) {
	y := math.Round(m.Score(x))
	if !finite(y) || y > math.MaxInt32 || y < math.MinInt32 {
		return 0, fmt.Errorf("%w: score out of range for carbon_savings=%v", ErrPredictionUnavailable, x)
	}
	return int(y), nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// LoadModel reads a model written by SaveModel.
func LoadModel(path string) (LinearModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return LinearModel{}, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	var raw struct {
		Slope     *float64 `json:"slope"`
		Intercept *float64 `json:"intercept"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return LinearModel{}, fmt.Errorf("%w: %s: %v", ErrInvalidModel, path, err)
	}
	if raw.Slope == nil || raw.Intercept == nil {
		return LinearModel{}, fmt.Errorf("%w: %s: missing slope or intercept", ErrInvalidModel, path)
	}
	m := LinearModel{Slope: *raw.Slope, Intercept: *raw.Intercept}
	if err := m.validate(); err != nil {
		return LinearModel{}, err
	}
	return m, nil
}

// SaveModel writes m to path through a temp file and rename, so readers never see a partial file.
func SaveModel(path string, m LinearModel) error {
	if err := m.validate(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".usage-model-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
