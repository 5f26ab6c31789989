// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"ecoblock-backend/internal/domain"
	"ecoblock-backend/internal/infrastructure/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenDB returns a migrated SQLite database living in the test's temp dir.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, dialect, err := database.Open("sqlite://" + filepath.Join(t.TempDir(), "ecoblock.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, dialect))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// Material returns a valid record with the given name and carbon savings.
func Material(name string, carbonSavings float64) domain.Material {
	return domain.Material{
		Material:        name,
		Quantity:        100,
		Source:          "NatureBricks",
		CarbonSavings:   carbonSavings,
		ProjectLocation: "Pune",
		UsedInProject:   "Community hall walls",
		DateAdded:       "2024-03-01",
		ActualUsage:     IntPtr(90),
	}
}

// Seed inserts the given records in order and returns them with IDs assigned.
func Seed(t *testing.T, db *gorm.DB, materials ...domain.Material) []domain.Material {
	t.Helper()
	store := &database.MaterialStore{DB: db}
	out := make([]domain.Material, 0, len(materials))
	for _, m := range materials {
		m := m
		require.NoError(t, store.Insert(context.Background(), &m))
		out = append(out, m)
	}
	return out
}
