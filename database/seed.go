package database

import (
	"fmt"

	"github.com/yeremiapane/table-reservations/layout"
	"github.com/yeremiapane/table-reservations/models"
	"github.com/yeremiapane/table-reservations/utils"
	"gorm.io/gorm"
)

// SeedTables creates an available state row for every floor plan table that has
// none. Existing rows are left alone so re-running never resets live state.
func SeedTables(db *gorm.DB, plan layout.Provider) (int, error) {
	var existing []int
	if err := db.Model(&models.Table{}).Pluck("number", &existing).Error; err != nil {
		return 0, fmt.Errorf("cannot list tables: %w", err)
	}
	have := make(map[int]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	var missing []models.Table
	for _, cfg := range plan.AllTables() {
		if have[cfg.Number] {
			continue
		}
		missing = append(missing, models.Table{
			Number: cfg.Number,
			Status: models.TableAvailable,
		})
	}
	if len(missing) == 0 {
		return 0, nil
	}

	if err := db.Create(&missing).Error; err != nil {
		return 0, fmt.Errorf("cannot seed tables: %w", err)
	}
	utils.InfoLogger.Printf("Seeded %d tables from floor plan", len(missing))
	return len(missing), nil
}
