package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ModelRun records one offline fit of the usage model.
type ModelRun struct {
	ID         int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Slope      float64        `gorm:"column:slope;not null" json:"slope"`
	Intercept  float64        `gorm:"column:intercept;not null" json:"intercept"`
	TrainCount int            `gorm:"column:train_count;not null" json:"train_count"`
	TestCount  int            `gorm:"column:test_count;not null" json:"test_count"`
	TestMSE    float64        `gorm:"column:test_mse;not null" json:"test_mse"`
	ModelPath  string         `gorm:"column:model_path;not null" json:"model_path"`
	Metrics    datatypes.JSON `gorm:"column:metrics" json:"metrics"`
	CreatedAt  time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (ModelRun) TableName() string {
	return "model_runs"
}
