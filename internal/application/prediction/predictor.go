package prediction

import (
	"sync"
	"sync/atomic"

	"ecoblock-backend/internal/pkg/metrics"

	"github.com/rs/zerolog/log"
)

// Predictor serves predictions from an immutable LinearModel that can be swapped atomically.
// The zero value has no model and fails every prediction with ErrPredictionUnavailable.
type Predictor struct {
	model atomic.Pointer[LinearModel]

	mu   sync.Mutex // serializes reloads
	path string
}

// NewPredictor returns a Predictor serving m.
func NewPredictor(m LinearModel) *Predictor {
	p := &Predictor{}
	p.model.Store(&m)
	return p
}

// Load builds a Predictor from the model file at path. A missing or malformed file is logged
// and leaves the predictor unavailable rather than failing startup.
func Load(path string) *Predictor {
	p := &Predictor{path: path}
	if err := p.Reload(path); err != nil {
		log.Warn().Err(err).Str("model_path", path).Msg("usage model not loaded; predictions unavailable")
	}
	return p
}

// Reload reads the model at path (or the last path when empty) and swaps it in.
// On failure the current model keeps serving.
func (p *Predictor) Reload(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if path == "" {
		path = p.path
	}
	m, err := LoadModel(path)
	if err != nil {
		metrics.ModelReloads.WithLabelValues("failed").Inc()
		return err
	}
	p.path = path
	p.model.Store(&m)
	metrics.ModelReloads.WithLabelValues("ok").Inc()
	log.Info().Str("model_path", path).Float64("slope", m.Slope).Float64("intercept", m.Intercept).Msg("usage model loaded")
	return nil
}

// Model returns the current model, if any.
func (p *Predictor) Model() (LinearModel, bool) {
	m := p.model.Load()
	if m == nil {
		return LinearModel{}, false
	}
	return *m, true
}

func (p *Predictor) Predict(carbonSavings float64) (int, error) {
	m := p.model.Load()
	if m == nil {
		metrics.Predictions.WithLabelValues("unavailable").Inc()
		return 0, ErrPredictionUnavailable
	}
	usage, err := m.Predict(carbonSavings)
	if err != nil {
		metrics.Predictions.WithLabelValues("unavailable").Inc()
		return 0, err
	}
	metrics.Predictions.WithLabelValues("ok").Inc()
	return usage, nil
}

// Ready reports whether a model is loaded.
func (p *Predictor) Ready() bool {
	return p.model.Load() != nil
}
