package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-reservations/layout"
	"github.com/yeremiapane/table-reservations/models"
	"github.com/yeremiapane/table-reservations/utils"
	"gorm.io/gorm"
)

type TableService struct {
	store *Store
}

func NewTableService(store *Store) *TableService {
	return &TableService{store: store}
}

// GroupResult describes a group right after a Group call.
type GroupResult struct {
	GroupID  uint               `json:"group_id"`
	Capacity int                `json:"capacity"`
	Members  []models.TableView `json:"members"`
}

// MergeTables joins floor plan entries with their state rows, in floor plan
// order. Entries without a state row are skipped: they have not been seeded.
func MergeTables(configs []layout.TableConfig, states []models.Table) []models.TableView {
	byNumber := make(map[int]models.Table, len(states))
	for _, st := range states {
		byNumber[st.Number] = st
	}

	capacity := make(map[int]int, len(configs))
	for _, cfg := range configs {
		capacity[cfg.Number] = cfg.Capacity
	}
	groupCapacity := make(map[uint]int)
	for _, st := range states {
		if st.GroupID != nil {
			groupCapacity[*st.GroupID] += capacity[st.Number]
		}
	}

	views := make([]models.TableView, 0, len(configs))
	for _, cfg := range configs {
		st, ok := byNumber[cfg.Number]
		if !ok {
			continue
		}
		v := models.TableView{
			ID:            st.ID,
			Number:        cfg.Number,
			Capacity:      cfg.Capacity,
			Area:          cfg.Area,
			PosX:          cfg.PosX,
			PosY:          cfg.PosY,
			Status:        st.Status,
			OccupiedOn:    st.OccupiedOn,
			GroupID:       st.GroupID,
			GroupCapacity: cfg.Capacity,
		}
		if st.GroupID != nil {
			v.GroupCapacity = groupCapacity[*st.GroupID]
		}
		views = append(views, v)
	}
	return views
}

func (ts *TableService) List(ctx context.Context) ([]models.TableView, error) {
	var states []models.Table
	if err := ts.store.read(ctx).Find(&states).Error; err != nil {
		return nil, storageError(err)
	}
	return MergeTables(ts.store.Plan.AllTables(), states), nil
}

// ListByArea returns an empty list for an area the floor plan does not know.
func (ts *TableService) ListByArea(ctx context.Context, area string) ([]models.TableView, error) {
	configs := ts.store.Plan.ByArea(strings.TrimSpace(area))
	if len(configs) == 0 {
		return []models.TableView{}, nil
	}

	numbers := make([]int, len(configs))
	for i, cfg := range configs {
		numbers[i] = cfg.Number
	}

	var states []models.Table
	if err := ts.store.read(ctx).Where("number IN ?", numbers).Find(&states).Error; err != nil {
		return nil, storageError(err)
	}
	return MergeTables(configs, states), nil
}

func (ts *TableService) Get(ctx context.Context, id uint) (*models.TableView, error) {
	var t models.Table
	err := ts.store.read(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, storageError(err)
	}
	return ts.viewOf(ts.store.read(ctx), t)
}

func (ts *TableService) GetByNumber(ctx context.Context, number int) (*models.TableView, error) {
	var t models.Table
	err := ts.store.read(ctx).Where("number = ?", number).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, storageError(err)
	}
	return ts.viewOf(ts.store.read(ctx), t)
}

// GroupMembers lists every table carrying groupID.
func (ts *TableService) GroupMembers(ctx context.Context, groupID uint) ([]models.TableView, error) {
	views, err := ts.members(ts.store.read(ctx), groupID)
	return views, storageError(err)
}

func (ts *TableService) members(db *gorm.DB, groupID uint) ([]models.TableView, error) {
	var states []models.Table
	if err := db.Where("group_id = ?", groupID).Order("number").Find(&states).Error; err != nil {
		return nil, err
	}
	configs := make([]layout.TableConfig, 0, len(states))
	for _, st := range states {
		if cfg, ok := ts.store.Plan.Lookup(st.Number); ok {
			configs = append(configs, cfg)
		}
	}
	return MergeTables(configs, states), nil
}

func (ts *TableService) viewOf(db *gorm.DB, t models.Table) (*models.TableView, error) {
	cfg, ok := ts.store.Plan.Lookup(t.Number)
	if !ok {
		return nil, ErrTableNotFound
	}
	states := []models.Table{t}
	configs := []layout.TableConfig{cfg}
	if t.GroupID != nil {
		var mates []models.Table
		if err := db.Where("group_id = ? AND id <> ?", *t.GroupID, t.ID).Find(&mates).Error; err != nil {
			return nil, storageError(err)
		}
		for _, m := range mates {
			if mc, ok := ts.store.Plan.Lookup(m.Number); ok {
				states = append(states, m)
				configs = append(configs, mc)
			}
		}
	}
	views := MergeTables(configs, states)
	return &views[0], nil
}

// SetState changes one table's status. Occupied and reserved take date, or
// today when date is empty. Available always clears the date.
func (ts *TableService) SetState(ctx context.Context, id uint, status, date string) (*models.TableView, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidTableStatus(status) {
		return nil, validationError("invalid status %q", status)
	}
	if date != "" {
		d, err := utils.ParseDate(date)
		if err != nil {
			return nil, validationError("%v", err)
		}
		date = d
	}

	var view *models.TableView
	err := ts.store.write(ctx, func(tx *gorm.DB) error {
		t, err := lockTable(tx, id)
		if err != nil {
			return err
		}

		if status == models.TableAvailable {
			t.Free()
		} else {
			d := date
			if d == "" {
				d = ts.store.Clock.Today()
			}
			t.Mark(status, d)
		}
		if err := tx.Save(t).Error; err != nil {
			return err
		}

		view, err = ts.viewOf(tx, *t)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table":  view.Number,
		"status": view.Status,
	}).Info("Table state changed")
	return view, nil
}

// Group merges secondary into principal's group, creating the group when the
// principal has none. Occupancy is reconciled as follows: an occupied principal
// is copied onto the secondary; an occupied secondary is copied onto an
// available principal. Two tables holding the same non-available status on
// different dates are refused rather than guessed at.
func (ts *TableService) Group(ctx context.Context, principalID, secondaryID uint) (*GroupResult, error) {
	if principalID == secondaryID {
		return nil, groupingError("a table cannot be grouped with itself")
	}

	var result *GroupResult
	err := ts.store.write(ctx, func(tx *gorm.DB) error {
		p, err := lockTable(tx, principalID)
		if err != nil {
			return err
		}
		s, err := lockTable(tx, secondaryID)
		if err != nil {
			return err
		}

		pc, ok := ts.store.Plan.Lookup(p.Number)
		if !ok {
			return ErrTableNotFound
		}
		sc, ok := ts.store.Plan.Lookup(s.Number)
		if !ok {
			return ErrTableNotFound
		}
		if pc.Area != sc.Area {
			return groupingError("tables must be in the same area")
		}

		groupID := p.ID
		if p.GroupID != nil {
			groupID = *p.GroupID
		}
		if s.GroupID != nil && *s.GroupID != groupID {
			return groupingError("secondary table already belongs to another group")
		}
		if p.Status == s.Status && p.Status != models.TableAvailable && p.OccupiedDate() != s.OccupiedDate() {
			return groupingError(fmt.Sprintf("both tables are %s on different dates", p.Status))
		}

		switch {
		case p.Status == models.TableOccupied:
			s.Mark(p.Status, p.OccupiedDate())
		case s.Status == models.TableOccupied && p.Status == models.TableAvailable:
			p.Mark(s.Status, s.OccupiedDate())
		}

		p.GroupID = &groupID
		s.GroupID = &groupID
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		if err := tx.Save(s).Error; err != nil {
			return err
		}

		members, err := ts.members(tx, groupID)
		if err != nil {
			return err
		}
		result = &GroupResult{GroupID: groupID, Members: members}
		if len(members) > 0 {
			result.Capacity = members[0].GroupCapacity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"group":    result.GroupID,
		"members":  len(result.Members),
		"capacity": result.Capacity,
	}).Info("Tables grouped")
	return result, nil
}

// Ungroup dissolves the whole group the table belongs to and returns the
// former members. Their states are not touched.
func (ts *TableService) Ungroup(ctx context.Context, id uint) ([]models.TableView, error) {
	var released []models.TableView
	err := ts.store.write(ctx, func(tx *gorm.DB) error {
		t, err := lockTable(tx, id)
		if err != nil {
			return err
		}
		if t.GroupID == nil {
			return ErrNotGrouped
		}
		groupID := *t.GroupID

		var ids []uint
		if err := tx.Model(&models.Table{}).Where("group_id = ?", groupID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Table{}).Where("group_id = ?", groupID).Update("group_id", nil).Error; err != nil {
			return err
		}

		var states []models.Table
		if err := tx.Where("id IN ?", ids).Order("number").Find(&states).Error; err != nil {
			return err
		}
		configs := make([]layout.TableConfig, 0, len(states))
		for _, st := range states {
			if cfg, ok := ts.store.Plan.Lookup(st.Number); ok {
				configs = append(configs, cfg)
			}
		}
		released = MergeTables(configs, states)
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithField("members", len(released)).Info("Table group dissolved")
	return released, nil
}
