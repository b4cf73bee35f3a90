package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-reservations/models"
	"github.com/yeremiapane/table-reservations/utils"
	"gorm.io/gorm"
)

type SweepResult struct {
	Expired  int `json:"expired"`
	Promoted int `json:"promoted"`
}

func (r SweepResult) Changed() bool {
	return r.Expired > 0 || r.Promoted > 0
}

// SweepMetrics are cumulative counters since the sweeper was created.
type SweepMetrics struct {
	Runs     int64     `json:"runs"`
	Expired  int64     `json:"expired"`
	Promoted int64     `json:"promoted"`
	Failures int64     `json:"failures"`
	LastRun  time.Time `json:"last_run"`
}

// Sweeper promotes today's reservations and archives past ones. Each
// reservation is handled in its own transaction, so a failure only rolls back
// the record being processed and the next run picks it up again.
type Sweeper struct {
	store    *Store
	Interval time.Duration
	// OnSweep is called after every ticker run that changed something.
	OnSweep func(SweepResult)

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mutex   sync.Mutex
	metrics SweepMetrics
}

func NewSweeper(store *Store) *Sweeper {
	return &Sweeper{
		store:    store,
		Interval: time.Minute,
		stopChan: make(chan struct{}),
	}
}

// PromoteToday marks the table of every reservation dated today as reserved,
// unless the table is already occupied or reserved.
func (sw *Sweeper) PromoteToday(ctx context.Context) (int, error) {
	today := sw.store.Clock.Today()

	var ids []uint
	if err := sw.store.read(ctx).Model(&models.Reservation{}).
		Where("date = ?", today).Order("time, id").Pluck("id", &ids).Error; err != nil {
		return 0, storageError(err)
	}

	promoted := 0
	var errs []error
	for _, id := range ids {
		changed := false
		err := sw.store.write(ctx, func(tx *gorm.DB) error {
			r, err := lockReservation(tx, id)
			if err != nil {
				return err
			}
			table, err := lockTable(tx, r.TableID)
			if err != nil {
				return err
			}
			if table.Status != models.TableAvailable {
				return nil
			}
			table.Mark(models.TableReserved, today)
			changed = true
			return tx.Save(table).Error
		})
		switch {
		case errors.Is(err, ErrReservationNotFound), errors.Is(err, ErrTableNotFound):
			// released or reconfigured since the listing
		case err != nil:
			errs = append(errs, fmt.Errorf("promote reservation %d: %w", id, err))
		case changed:
			promoted++
		}
	}

	sw.record(0, promoted, len(errs))
	if promoted > 0 {
		utils.InfoLogger.WithField("count", promoted).Info("Promoted tables to reserved for today")
	}
	return promoted, errors.Join(errs...)
}

// ExpireStale archives every reservation dated before today and frees its
// table, unless the table has since moved on to a state dated today or later.
func (sw *Sweeper) ExpireStale(ctx context.Context) (int, error) {
	today := sw.store.Clock.Today()

	var ids []uint
	if err := sw.store.read(ctx).Model(&models.Reservation{}).
		Where("date < ?", today).Order("date, time, id").Pluck("id", &ids).Error; err != nil {
		return 0, storageError(err)
	}

	expired := 0
	var errs []error
	for _, id := range ids {
		err := sw.store.write(ctx, func(tx *gorm.DB) error {
			r, err := lockReservation(tx, id)
			if err != nil {
				return err
			}
			// re-checked under lock, the listing ran outside the transaction
			if r.Date >= today {
				return ErrReservationNotFound
			}
			_, err = archive(tx, sw.store.Clock, r, models.ReleaseExpired, true)
			return err
		})
		switch {
		case errors.Is(err, ErrReservationNotFound):
		case err != nil:
			utils.ErrorLogger.WithFields(logrus.Fields{
				"reservation": id,
			}).Errorf("Cannot expire reservation: %v", err)
			errs = append(errs, fmt.Errorf("expire reservation %d: %w", id, err))
		default:
			expired++
		}
	}

	sw.record(expired, 0, len(errs))
	if expired > 0 {
		utils.InfoLogger.WithField("count", expired).Info("Expired past reservations into history")
	}
	return expired, errors.Join(errs...)
}

// Sweep runs ExpireStale then PromoteToday. Both always run; their errors are
// joined.
func (sw *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	var errExpire, errPromote error

	res.Expired, errExpire = sw.ExpireStale(ctx)
	res.Promoted, errPromote = sw.PromoteToday(ctx)

	sw.mutex.Lock()
	sw.metrics.Runs++
	sw.metrics.LastRun = sw.store.Clock.Now()
	sw.mutex.Unlock()

	return res, errors.Join(errExpire, errPromote)
}

func (sw *Sweeper) record(expired, promoted, failures int) {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()

	sw.metrics.Expired += int64(expired)
	sw.metrics.Promoted += int64(promoted)
	sw.metrics.Failures += int64(failures)
}

func (sw *Sweeper) Metrics() SweepMetrics {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()

	return sw.metrics
}

// Start sweeps once immediately, then on every Interval until Stop.
func (sw *Sweeper) Start() {
	sw.wg.Add(1)
	go func() {
		defer sw.wg.Done()

		sw.tick()

		ticker := time.NewTicker(sw.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sw.tick()
			case <-sw.stopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Printf("Reservation sweeper started (interval %s)", sw.Interval)
}

func (sw *Sweeper) Stop() {
	sw.stopOnce.Do(func() {
		close(sw.stopChan)
	})
	sw.wg.Wait()
}

func (sw *Sweeper) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), sw.Interval)
	defer cancel()

	res, err := sw.Sweep(ctx)
	if err != nil {
		utils.ErrorLogger.Errorf("Sweep finished with errors: %v", err)
	}
	if res.Changed() && sw.OnSweep != nil {
		sw.OnSweep(res)
	}
}
