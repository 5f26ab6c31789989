package database

import (
	"context"
	"errors"
	"fmt"

	"ecoblock-backend/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrStorage  = errors.New("storage error")
)

// DefaultPageSize bounds how many rows ScanAll holds in memory at once.
const DefaultPageSize = 100

// MaterialStore owns the materials table.
type MaterialStore struct {
	DB *gorm.DB
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// Insert persists m and fills in its assigned ID.
func (s *MaterialStore) Insert(ctx context.Context, m *domain.Material) error {
	m.ID = 0
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return storageErr("insert material", err)
	}
	return nil
}

func (s *MaterialStore) GetByID(ctx context.Context, id int64) (*domain.Material, error) {
	var m domain.Material
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get material", err)
	}
	return &m, nil
}

// ListLimited returns up to limit rows ordered by id.
func (s *MaterialStore) ListLimited(ctx context.Context, limit int) ([]domain.Material, error) {
	materials := []domain.Material{}
	if err := s.DB.WithContext(ctx).Order("id ASC").Limit(limit).Find(&materials).Error; err != nil {
		return nil, storageErr("list materials", err)
	}
	return materials, nil
}

// ListAlternatives returns rows other than excludeID whose carbon_savings is strictly greater
// than minCarbonSavings, best first. Ties keep insertion order.
func (s *MaterialStore) ListAlternatives(ctx context.Context, excludeID int64, minCarbonSavings float64, limit int) ([]domain.Material, error) {
	materials := []domain.Material{}
	err := s.DB.WithContext(ctx).
		Where("id <> ? AND carbon_savings > ?", excludeID, minCarbonSavings).
		Order("carbon_savings DESC").
		Order("id ASC").
		Limit(limit).
		Find(&materials).Error
	if err != nil {
		return nil, storageErr("list alternatives", err)
	}
	return materials, nil
}

// ScanAll walks the whole table in id order, pageSize rows per query. Each page is a
// separate keyset query, so no cursor or lock outlives a single page. Iteration stops at the
// first error returned by fn or when ctx is done.
func (s *MaterialStore) ScanAll(ctx context.Context, pageSize int, fn func(domain.Material) error) error {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var lastID int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page := make([]domain.Material, 0, pageSize)
		err := s.DB.WithContext(ctx).
			Where("id > ?", lastID).
			Order("id ASC").
			Limit(pageSize).
			Find(&page).Error
		if err != nil {
			return storageErr("scan materials", err)
		}
		for _, m := range page {
			if err := fn(m); err != nil {
				return err
			}
		}
		if len(page) < pageSize {
			return nil
		}
		lastID = page[len(page)-1].ID
	}
}

// CarbonAggregate is the raw sum and row count over the table.
type CarbonAggregate struct {
	Total float64 `gorm:"column:total"`
	Count int64   `gorm:"column:count"`
}

// Average is Total/Count, or 0 for an empty table.
func (a CarbonAggregate) Average() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Total / float64(a.Count)
}

func (s *MaterialStore) AggregateCarbonSavings(ctx context.Context) (CarbonAggregate, error) {
	var agg CarbonAggregate
	err := s.DB.WithContext(ctx).
		Model(&domain.Material{}).
		Select("COALESCE(SUM(carbon_savings), 0) AS total, COUNT(*) AS count").
		Scan(&agg).Error
	if err != nil {
		return CarbonAggregate{}, storageErr("aggregate carbon savings", err)
	}
	return agg, nil
}

func (s *MaterialStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.Material{}).Count(&n).Error; err != nil {
		return 0, storageErr("count materials", err)
	}
	return n, nil
}

// ExistsByMaterialAndDate reports whether a row with the same material name and date exists.
func (s *MaterialStore) ExistsByMaterialAndDate(ctx context.Context, material, dateAdded string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&domain.Material{}).
		Where("material = ? AND date_added = ?", material, dateAdded).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return false, storageErr("lookup material", err)
	}
	return n > 0, nil
}

// UsagePairs returns every (carbon_savings, actual_usage) pair with actual_usage present, in id order.
func (s *MaterialStore) UsagePairs(ctx context.Context) ([]domain.UsagePair, error) {
	pairs := []domain.UsagePair{}
	err := s.DB.WithContext(ctx).
		Model(&domain.Material{}).
		Select("carbon_savings, actual_usage").
		Where("actual_usage IS NOT NULL").
		Order("id ASC").
		Scan(&pairs).Error
	if err != nil {
		return nil, storageErr("load usage pairs", err)
	}
	return pairs, nil
}

// WithTx runs fn against a store bound to a single transaction; any error rolls it back.
func (s *MaterialStore) WithTx(ctx context.Context, fn func(tx *MaterialStore) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&MaterialStore{DB: tx})
	})
}
