package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-reservations/models"
	"github.com/yeremiapane/table-reservations/utils"
	"gorm.io/gorm"
)

// ReservationWindow is how long a booking holds its table, in minutes.
const ReservationWindow = 120

type ReservationService struct {
	store *Store
}

func NewReservationService(store *Store) *ReservationService {
	return &ReservationService{store: store}
}

type BookRequest struct {
	TableID   uint
	Date      string
	Time      string
	PartySize int
	Requester string
	Phone     *string
	Note      *string
}

// normalize validates the request in place. It never touches storage.
func (req *BookRequest) normalize(today string) error {
	var problems []string

	if req.TableID == 0 {
		problems = append(problems, "table_id is required")
	}
	if d, err := utils.ParseDate(req.Date); err != nil {
		problems = append(problems, err.Error())
	} else if d < today {
		problems = append(problems, "date is in the past")
	} else {
		req.Date = d
	}
	if t, err := utils.ParseTimeOfDay(req.Time); err != nil {
		problems = append(problems, err.Error())
	} else {
		req.Time = t
	}
	if req.PartySize <= 0 {
		problems = append(problems, "party_size must be greater than 0")
	}
	req.Requester = strings.TrimSpace(req.Requester)
	if req.Requester == "" {
		problems = append(problems, "requester is required")
	}
	req.Phone = optional(req.Phone)
	req.Note = optional(req.Note)

	if len(problems) > 0 {
		return validationError("%s", strings.Join(problems, "; "))
	}
	return nil
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// timesOverlap reports whether two HH:MM starts are within the reservation
// window of each other. Times do not wrap around midnight.
func timesOverlap(a, b string) (bool, error) {
	am, err := utils.MinutesOfDay(a)
	if err != nil {
		return false, err
	}
	bm, err := utils.MinutesOfDay(b)
	if err != nil {
		return false, err
	}
	diff := am - bm
	if diff < 0 {
		diff = -diff
	}
	return diff <= ReservationWindow, nil
}

// Book creates a reservation. A booking for today flips the table to reserved
// at once; later dates leave the table as it is until the sweeper promotes it.
func (rs *ReservationService) Book(ctx context.Context, req BookRequest) (*models.Reservation, error) {
	today := rs.store.Clock.Today()
	if err := req.normalize(today); err != nil {
		return nil, err
	}

	var created *models.Reservation
	err := rs.store.write(ctx, func(tx *gorm.DB) error {
		table, err := lockTable(tx, req.TableID)
		if err != nil {
			return err
		}
		cfg, ok := rs.store.Plan.Lookup(table.Number)
		if !ok {
			return ErrTableNotFound
		}

		if table.Status == models.TableOccupied {
			return ErrTableOccupied
		}
		if table.Status == models.TableReserved && table.OccupiedDate() == req.Date {
			return ErrAlreadyReservedForDate
		}

		var sameDay []models.Reservation
		if err := tx.Where("table_id = ? AND date = ?", table.ID, req.Date).Find(&sameDay).Error; err != nil {
			return err
		}
		for _, other := range sameDay {
			overlap, err := timesOverlap(req.Time, other.Time)
			if err != nil {
				return err
			}
			if overlap {
				return ErrTimeConflict
			}
		}

		r := &models.Reservation{
			TableID:   table.ID,
			Date:      req.Date,
			Time:      req.Time,
			Area:      cfg.Area,
			PartySize: req.PartySize,
			Requester: req.Requester,
			Phone:     req.Phone,
			Note:      req.Note,
			CreatedAt: rs.store.Clock.Now().UTC(),
		}
		if err := tx.Create(r).Error; err != nil {
			return err
		}

		if req.Date == today {
			table.Mark(models.TableReserved, today)
			if err := tx.Save(table).Error; err != nil {
				return err
			}
		}

		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation": created.ID,
		"table":       created.TableID,
		"date":        created.Date,
		"slot":        created.Time,
	}).Info("Reservation booked")
	return created, nil
}

func (rs *ReservationService) Get(ctx context.Context, id uint) (*models.Reservation, error) {
	var r models.Reservation
	err := rs.store.read(ctx).First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, storageError(err)
	}
	return &r, nil
}

// Release archives the reservation as a manual release and frees its table.
func (rs *ReservationService) Release(ctx context.Context, id uint) (*models.ReservationHistory, error) {
	var entry *models.ReservationHistory
	err := rs.store.write(ctx, func(tx *gorm.DB) error {
		r, err := lockReservation(tx, id)
		if err != nil {
			return err
		}
		entry, err = archive(tx, rs.store.Clock, r, models.ReleaseManual, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation": id,
		"table":       entry.Snapshot.TableNumber,
	}).Info("Reservation released")
	return entry, nil
}

// Delete removes the reservation and frees its table without archiving it.
func (rs *ReservationService) Delete(ctx context.Context, id uint) (*models.Reservation, error) {
	var deleted *models.Reservation
	err := rs.store.write(ctx, func(tx *gorm.DB) error {
		r, err := lockReservation(tx, id)
		if err != nil {
			return err
		}

		table, err := lockTable(tx, r.TableID)
		switch {
		case errors.Is(err, ErrTableNotFound):
		case err != nil:
			return err
		default:
			table.Free()
			if err := tx.Save(table).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.Reservation{}, r.ID).Error; err != nil {
			return err
		}
		deleted = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithField("reservation", id).Info("Reservation deleted")
	return deleted, nil
}

// ListByDate lists reservations for one date, or all of them when date is empty.
func (rs *ReservationService) ListByDate(ctx context.Context, date string) ([]models.Reservation, error) {
	q := rs.store.read(ctx)
	if strings.TrimSpace(date) != "" {
		d, err := utils.ParseDate(date)
		if err != nil {
			return nil, validationError("%v", err)
		}
		q = q.Where("date = ?", d)
	}

	var out []models.Reservation
	if err := q.Order("date, time, id").Find(&out).Error; err != nil {
		return nil, storageError(err)
	}
	return out, nil
}

func (rs *ReservationService) ListByTable(ctx context.Context, tableID uint) ([]models.Reservation, error) {
	var count int64
	if err := rs.store.read(ctx).Model(&models.Table{}).Where("id = ?", tableID).Count(&count).Error; err != nil {
		return nil, storageError(err)
	}
	if count == 0 {
		return nil, ErrTableNotFound
	}

	var out []models.Reservation
	if err := rs.store.read(ctx).Where("table_id = ?", tableID).Order("date, time, id").Find(&out).Error; err != nil {
		return nil, storageError(err)
	}
	return out, nil
}

// ListHistory returns archived reservations whose reservation date is within
// [from, to].
func (rs *ReservationService) ListHistory(ctx context.Context, from, to string) ([]models.ReservationHistory, error) {
	from, to, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	var out []models.ReservationHistory
	err = rs.store.read(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date, time, id").
		Find(&out).Error
	if err != nil {
		return nil, storageError(err)
	}
	return out, nil
}

func parseRange(from, to string) (string, string, error) {
	f, err := utils.ParseDate(from)
	if err != nil {
		return "", "", validationError("from: %v", err)
	}
	t, err := utils.ParseDate(to)
	if err != nil {
		return "", "", validationError("to: %v", err)
	}
	if f > t {
		return "", "", validationError("from must not be after to")
	}
	return f, t, nil
}
