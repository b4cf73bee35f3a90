package services

import (
	"context"
	"errors"
	"sync"

	"github.com/yeremiapane/table-reservations/layout"
	"github.com/yeremiapane/table-reservations/models"
	"github.com/yeremiapane/table-reservations/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store bundles what every service needs. All writes go through write, which
// serializes them and runs each one as a single transaction.
type Store struct {
	DB    *gorm.DB
	Clock utils.Clock
	Plan  layout.Provider

	mu sync.Mutex
}

func NewStore(db *gorm.DB, clock utils.Clock, plan layout.Provider) *Store {
	return &Store{DB: db, Clock: clock, Plan: plan}
}

func (s *Store) write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return storageError(s.DB.WithContext(ctx).Transaction(fn))
}

func (s *Store) read(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// lockTable loads a table row for update. SQLite ignores the locking clause,
// the writer mutex covers it there.
func lockTable(tx *gorm.DB, id uint) (*models.Table, error) {
	var t models.Table
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func lockReservation(tx *gorm.DB, id uint) (*models.Reservation, error) {
	var r models.Reservation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// archive moves r into the history log and removes it from the ledger. When
// keepCurrent is set, a table whose occupancy date is today or later is left
// alone since that state no longer belongs to r.
func archive(tx *gorm.DB, clock utils.Clock, r *models.Reservation, reason string, keepCurrent bool) (*models.ReservationHistory, error) {
	var table models.Table
	tableFound := true
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, r.TableID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		tableFound = false
	}

	releaseTime := clock.NowTimeOfDay()
	entry := &models.ReservationHistory{
		OriginalReservationID: r.ID,
		Snapshot:              models.SnapshotOf(*r, table.Number),
		ReleasedAt:            clock.Now().UTC(),
		ReleaseTime:           &releaseTime,
		Reason:                reason,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}

	if tableFound {
		stale := table.OccupiedOn == nil || table.OccupiedDate() < clock.Today()
		if !keepCurrent || stale {
			table.Free()
			if err := tx.Save(&table).Error; err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Delete(&models.Reservation{}, r.ID).Error; err != nil {
		return nil, err
	}
	return entry, nil
}
