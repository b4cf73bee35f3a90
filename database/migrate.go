package database

import (
	"fmt"
	"time"

	"github.com/yeremiapane/table-reservations/models"
	"github.com/yeremiapane/table-reservations/utils"
	"gorm.io/gorm"
)

type migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// Every step must be safe to run against a schema that already has its effect:
// older databases were patched by hand before versioning existed.
var migrations = []migration{
	{1, "create core tables", func(tx *gorm.DB) error {
		return tx.AutoMigrate(&models.Table{}, &models.Reservation{}, &models.ReservationHistory{})
	}},
	{2, "add reservation contact columns", func(tx *gorm.DB) error {
		if err := addColumnIfMissing(tx, &models.Reservation{}, "phone", "note"); err != nil {
			return err
		}
		return addColumnIfMissing(tx, &models.ReservationHistory{}, "phone", "note")
	}},
	{3, "add history release time", func(tx *gorm.DB) error {
		return addColumnIfMissing(tx, &models.ReservationHistory{}, "release_time")
	}},
	{4, "index reservations by table and date", func(tx *gorm.DB) error {
		if tx.Migrator().HasIndex(&models.Reservation{}, "idx_reservation_table_date") {
			return nil
		}
		return tx.Migrator().CreateIndex(&models.Reservation{}, "idx_reservation_table_date")
	}},
}

// Migrate brings the schema to the latest version, recording applied steps in
// schema_migrations.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.SchemaMigration{}); err != nil {
		return fmt.Errorf("cannot create schema_migrations: %w", err)
	}

	var applied []models.SchemaMigration
	if err := db.Find(&applied).Error; err != nil {
		return fmt.Errorf("cannot read schema_migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&models.SchemaMigration{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		utils.InfoLogger.Printf("Applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}

func addColumnIfMissing(tx *gorm.DB, model interface{}, columns ...string) error {
	for _, col := range columns {
		if tx.Migrator().HasColumn(model, col) {
			continue
		}
		if err := tx.Migrator().AddColumn(model, col); err != nil {
			return fmt.Errorf("cannot add column %s: %w", col, err)
		}
	}
	return nil
}
