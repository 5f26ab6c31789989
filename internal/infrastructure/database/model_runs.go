package database

import (
	"context"
	"errors"

	"ecoblock-backend/internal/domain"

	"gorm.io/gorm"
)

// ModelRunStore keeps the history of offline model fits.
type ModelRunStore struct {
	DB *gorm.DB
}

func (s *ModelRunStore) Record(ctx context.Context, run *domain.ModelRun) error {
	if err := s.DB.WithContext(ctx).Create(run).Error; err != nil {
		return storageErr("record model run", err)
	}
	return nil
}

// Latest returns the most recent run, or ErrNotFound when none was recorded.
func (s *ModelRunStore) Latest(ctx context.Context) (*domain.ModelRun, error) {
	var run domain.ModelRun
	if err := s.DB.WithContext(ctx).Order("id DESC").First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("latest model run", err)
	}
	return &run, nil
}
