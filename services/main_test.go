package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/table-reservations/database"
	"github.com/yeremiapane/table-reservations/layout"
	"github.com/yeremiapane/table-reservations/models"
	"github.com/yeremiapane/table-reservations/utils"
)

// Phoenix has no DST, a fixed zone keeps tests independent of tzdata.
var restaurantZone = time.FixedZone("MST", -7*60*60)

type testEnv struct {
	ctx          context.Context
	db           *gorm.DB
	clock        *utils.FixedClock
	store        *Store
	tables       *TableService
	reservations *ReservationService
	sweeper      *Sweeper
	reports      *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	plan, err := layout.Default()
	require.NoError(t, err)
	_, err = database.SeedTables(db, plan)
	require.NoError(t, err)

	clock := &utils.FixedClock{At: time.Date(2026, 10, 19, 18, 0, 0, 0, restaurantZone)}
	store := NewStore(db, clock, plan)
	return &testEnv{
		ctx:          context.Background(),
		db:           db,
		clock:        clock,
		store:        store,
		tables:       NewTableService(store),
		reservations: NewReservationService(store),
		sweeper:      NewSweeper(store),
		reports:      NewReportService(store),
	}
}

func (e *testEnv) today() string {
	return e.clock.Today()
}

func (e *testEnv) dayOffset(days int) string {
	return e.clock.At.AddDate(0, 0, days).Format(utils.DateLayout)
}

// advance moves the clock forward by whole days, keeping the time of day.
func (e *testEnv) advance(days int) {
	e.clock.At = e.clock.At.AddDate(0, 0, days)
}

func (e *testEnv) tableID(t *testing.T, number int) uint {
	t.Helper()
	v, err := e.tables.GetByNumber(e.ctx, number)
	require.NoError(t, err)
	return v.ID
}

func (e *testEnv) table(t *testing.T, number int) models.TableView {
	t.Helper()
	v, err := e.tables.GetByNumber(e.ctx, number)
	require.NoError(t, err)
	return *v
}

func (e *testEnv) book(t *testing.T, number int, date, at string, party int) *models.Reservation {
	t.Helper()
	r, err := e.reservations.Book(e.ctx, BookRequest{
		TableID:   e.tableID(t, number),
		Date:      date,
		Time:      at,
		PartySize: party,
		Requester: "Juan Pérez",
	})
	require.NoError(t, err)
	return r
}

func (e *testEnv) countHistory(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.ReservationHistory{}).Count(&n).Error)
	return n
}

func (e *testEnv) countReservations(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Reservation{}).Count(&n).Error)
	return n
}
