package materials

import (
	"context"
	"errors"
	"fmt"

	"ecoblock-backend/internal/domain"
	"ecoblock-backend/internal/infrastructure/database"
	"ecoblock-backend/internal/pkg/metrics"
	"ecoblock-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	// ListLimit caps the plain list endpoint.
	ListLimit = 100
	// AlternativesLimit caps the suggestions endpoint.
	AlternativesLimit = 5
)

// Store is the persistence the service needs; *database.MaterialStore implements it.
type Store interface {
	Insert(ctx context.Context, m *domain.Material) error
	GetByID(ctx context.Context, id int64) (*domain.Material, error)
	ListLimited(ctx context.Context, limit int) ([]domain.Material, error)
	ListAlternatives(ctx context.Context, excludeID int64, minCarbonSavings float64, limit int) ([]domain.Material, error)
	ScanAll(ctx context.Context, pageSize int, fn func(domain.Material) error) error
	AggregateCarbonSavings(ctx context.Context) (database.CarbonAggregate, error)
	Count(ctx context.Context) (int64, error)
}

type SourceVerifier interface {
	IsVerified(source string) bool
}

type UsagePredictor interface {
	Predict(carbonSavings float64) (int, error)
}

type Service struct {
	Store     Store
	Verifier  SourceVerifier
	Predictor UsagePredictor
	// PageSize bounds rows held per export page; 0 means database.DefaultPageSize.
	PageSize int
}

// CreateMaterialInput is a new record; ActualUsage is predicted when omitted.
type CreateMaterialInput struct {
	Material        string   `json:"material" validate:"notblank"`
	Quantity        *int     `json:"quantity" validate:"required,gte=0,lte=2147483647"`
	Source          string   `json:"source" validate:"notblank"`
	CarbonSavings   *float64 `json:"carbon_savings" validate:"required,finite"`
	ProjectLocation string   `json:"project_location" validate:"notblank"`
	UsedInProject   string   `json:"used_in_project" validate:"notblank"`
	DateAdded       string   `json:"date_added" validate:"required,datetime=2006-01-02"`
	ActualUsage     *int     `json:"actual_usage" validate:"omitempty,gte=0,lte=2147483647"`
}

// Create validates in, checks its source, fills actual_usage from the predictor when absent
// and stores the record. Nothing is written unless every step succeeds.
func (s *Service) Create(ctx context.Context, in CreateMaterialInput) (*domain.Material, error) {
	if fields := validation.Struct(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	if !s.Verifier.IsVerified(in.Source) {
		return nil, ErrSourceNotVerified
	}

	usage := in.ActualUsage
	if usage == nil {
		predicted, err := s.Predictor.Predict(*in.CarbonSavings)
		if err != nil {
			log.Error().Err(err).Float64("carbon_savings", *in.CarbonSavings).Msg("materials: prediction error")
			return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
		}
		usage = &predicted
	}

	m := &domain.Material{
		Material:        in.Material,
		Quantity:        *in.Quantity,
		Source:          in.Source,
		CarbonSavings:   *in.CarbonSavings,
		ProjectLocation: in.ProjectLocation,
		UsedInProject:   in.UsedInProject,
		DateAdded:       in.DateAdded,
		ActualUsage:     usage,
	}
	if err := s.Store.Insert(ctx, m); err != nil {
		return nil, err
	}
	metrics.MaterialsCreated.Inc()
	return m, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Material, error) {
	m, err := s.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Material, error) {
	return s.Store.ListLimited(ctx, ListLimit)
}

// Total counts every stored record, including those past the list cap.
func (s *Service) Total(ctx context.Context) (int64, error) {
	return s.Store.Count(ctx)
}

// Prediction is a fresh model estimate for a stored record.
type Prediction struct {
	Material       string `json:"material"`
	PredictedUsage int    `json:"predicted_usage"`
}

// PredictForMaterial re-predicts usage from the stored carbon_savings, ignoring any stored actual_usage.
func (s *Service) PredictForMaterial(ctx context.Context, id int64) (*Prediction, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	usage, err := s.Predictor.Predict(m.CarbonSavings)
	if err != nil {
		log.Error().Err(err).Int64("material_id", id).Msg("materials: prediction error")
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	return &Prediction{Material: m.Material, PredictedUsage: usage}, nil
}

// CarbonSummary holds the total and mean carbon savings, both rounded to 2 decimal places.
type CarbonSummary struct {
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
}

func (s *Service) CarbonSavingsSummary(ctx context.Context) (*CarbonSummary, error) {
	agg, err := s.Store.AggregateCarbonSavings(ctx)
	if err != nil {
		return nil, err
	}
	return &CarbonSummary{
		Total:   round2(agg.Total),
		Average: round2(agg.Average()),
	}, nil
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// SuggestAlternatives lists up to AlternativesLimit other records with strictly greater
// carbon savings than the record id, best first.
func (s *Service) SuggestAlternatives(ctx context.Context, id int64) ([]domain.MaterialAlternative, error) {
	base, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.Store.ListAlternatives(ctx, base.ID, base.CarbonSavings, AlternativesLimit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MaterialAlternative, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.MaterialAlternative{
			ID:            m.ID,
			Material:      m.Material,
			CarbonSavings: m.CarbonSavings,
		})
	}
	return out, nil
}
