package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"ecoblock-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	// DefaultTestFraction and DefaultSeed give a reproducible 80/20 split.
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
)

var ErrInsufficientData = errors.New("not enough usage data to fit a model")

// Fit computes the ordinary least squares line through the pairs.
func Fit(pairs []domain.UsagePair) (LinearModel, error) {
	n := float64(len(pairs))
	if len(pairs) < 2 {
		return LinearModel{}, fmt.Errorf("%w: need at least 2 rows, have %d", ErrInsufficientData, len(pairs))
	}
	var sumX, sumY float64
	for _, p := range pairs {
		sumX += p.CarbonSavings
		sumY += float64(p.ActualUsage)
	}
	meanX, meanY := sumX/n, sumY/n
	var sxx, sxy float64
	for _, p := range pairs {
		dx := p.CarbonSavings - meanX
		sxx += dx * dx
		sxy += dx * (float64(p.ActualUsage) - meanY)
	}
	if sxx == 0 {
		return LinearModel{}, fmt.Errorf("%w: carbon_savings has zero variance", ErrInsufficientData)
	}
	slope := sxy / sxx
	m := LinearModel{Slope: slope, Intercept: meanY - slope*meanX}
	if err := m.validate(); err != nil {
		return LinearModel{}, err
	}
	return m, nil
}

// MSE is the mean squared error of m over pairs, 0 for no pairs.
func MSE(m LinearModel, pairs []domain.UsagePair) float64 {
	if len(pairs) == 0 {
		return 0
	}
	var sum float64
	for _, p := range pairs {
		d := m.Score(p.CarbonSavings) - float64(p.ActualUsage)
		sum += d * d
	}
	return sum / float64(len(pairs))
}

// Split shuffles pairs with a seeded source and holds out ceil(testFraction*n) of them.
// When the hold-out would leave fewer than 2 training rows, everything is used for training.
func Split(pairs []domain.UsagePair, testFraction float64, seed int64) (train, test []domain.UsagePair) {
	n := len(pairs)
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest <= 0 || n-nTest < 2 {
		return append([]domain.UsagePair(nil), pairs...), nil
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = make([]domain.UsagePair, 0, nTest)
	train = make([]domain.UsagePair, 0, n-nTest)
	for i, idx := range perm {
		if i < nTest {
			test = append(test, pairs[idx])
		} else {
			train = append(train, pairs[idx])
		}
	}
	return train, test
}

// PairSource supplies training samples.
type PairSource interface {
	UsagePairs(ctx context.Context) ([]domain.UsagePair, error)
}

// RunRecorder stores the outcome of a training run.
type RunRecorder interface {
	Record(ctx context.Context, run *domain.ModelRun) error
}

// Trainer fits the usage model offline from stored rows and writes it to ModelPath.
type Trainer struct {
	Pairs        PairSource
	Runs         RunRecorder
	ModelPath    string
	TestFraction float64
	Seed         int64
}

func (t *Trainer) Train(ctx context.Context) (*domain.ModelRun, error) {
	pairs, err := t.Pairs.UsagePairs(ctx)
	if err != nil {
		return nil, err
	}
	frac := t.TestFraction
	if frac <= 0 || frac >= 1 {
		frac = DefaultTestFraction
	}
	train, test := Split(pairs, frac, t.Seed)
	model, err := Fit(train)
	if err != nil {
		return nil, err
	}
	evalSet := test
	if len(evalSet) == 0 {
		evalSet = train
	}
	mse := MSE(model, evalSet)

	if err := SaveModel(t.ModelPath, model); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}

	metricsDoc, _ := json.Marshal(map[string]interface{}{
		"rows":          len(pairs),
		"test_fraction": frac,
		"seed":          t.Seed,
		"train_mse":     MSE(model, train),
		"test_mse":      mse,
		"held_out":      len(test) > 0,
	})
	run := &domain.ModelRun{
		Slope:      model.Slope,
		Intercept:  model.Intercept,
		TrainCount: len(train),
		TestCount:  len(test),
		TestMSE:    mse,
		ModelPath:  t.ModelPath,
		Metrics:    datatypes.JSON(metricsDoc),
	}
	if t.Runs != nil {
		if err := t.Runs.Record(ctx, run); err != nil {
			return nil, err
		}
	}
	log.Info().
		Int("train_rows", run.TrainCount).
		Int("test_rows", run.TestCount).
		Float64("mse", mse).
		Str("model_path", t.ModelPath).
		Msg("usage model trained")
	return run, nil
}
