package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/table-reservations/database"
	"github.com/yeremiapane/table-reservations/floor"
	"github.com/yeremiapane/table-reservations/layout"
	"github.com/yeremiapane/table-reservations/services"
	"github.com/yeremiapane/table-reservations/utils"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	clock  *utils.FixedClock
	token  string
}

func setupTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("router-test-secret")

	name := strings.ReplaceAll(t.Name(), "/", "_")
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

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	clock := &utils.FixedClock{At: time.Date(2026, 10, 19, 18, 0, 0, 0, time.FixedZone("MST", -7*60*60))}
	store := services.NewStore(db, clock, plan)
	engine := SetupRouter(Dependencies{
		Tables:            services.NewTableService(store),
		Reservations:      services.NewReservationService(store),
		Sweeper:           services.NewSweeper(store),
		Reports:           services.NewReportService(store),
		Plan:              plan,
		Clock:             clock,
		Hub:               floor.NewHub(),
		Timezone:          "America/Phoenix",
		ReportTitle:       "Test Report",
		AdminPasswordHash: string(hash),
	})
	return &testServer{t: t, engine: engine, clock: clock}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func (s *testServer) login() {
	s.t.Helper()
	w := s.do(http.MethodPost, "/login", map[string]string{"username": "admin", "password": "secret"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	decode(s.t, w, &data)
	assert.Equal(s.t, "admin", data.Role)
	s.token = data.Token
}

func TestReservationFlow(t *testing.T) {
	s := setupTestServer(t)
	today := s.clock.Today()

	w := s.do(http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var clock struct {
		Date     string `json:"date"`
		Timezone string `json:"timezone"`
	}
	decode(t, s.do(http.MethodGet, "/api/current-date", nil), &clock)
	assert.Equal(t, today, clock.Date)
	assert.Equal(t, "America/Phoenix", clock.Timezone)

	var tables []struct {
		ID     uint   `json:"id"`
		Number int    `json:"number"`
		Area   string `json:"area"`
		Status string `json:"status"`
	}
	decode(t, s.do(http.MethodGet, "/api/tables", nil), &tables)
	require.Len(t, tables, 28)
	require.Equal(t, 101, tables[0].Number)
	t101 := tables[0].ID

	booking := map[string]interface{}{
		"table_id":   t101,
		"date":       today,
		"time":       "19:00",
		"party_size": 4,
		"requester":  "Juan Pérez",
	}
	w = s.do(http.MethodPost, "/api/reservations", booking)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID   uint   `json:"id"`
		Area string `json:"area"`
	}
	decode(t, w, &created)
	assert.Equal(t, "interior", created.Area)

	var table struct {
		Status     string `json:"status"`
		OccupiedOn string `json:"occupied_on"`
	}
	decode(t, s.do(http.MethodGet, fmt.Sprintf("/api/tables/%d", t101), nil), &table)
	assert.Equal(t, "reserved", table.Status)
	assert.Equal(t, today, table.OccupiedOn)

	booking["time"] = "22:00"
	w = s.do(http.MethodPost, "/api/reservations", booking)
	assert.Equal(t, http.StatusConflict, w.Code)

	booking["date"] = "2020-01-01"
	w = s.do(http.MethodPost, "/api/reservations", booking)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var list []struct {
		ID uint `json:"id"`
	}
	decode(t, s.do(http.MethodGet, "/api/reservations?date="+today, nil), &list)
	assert.Len(t, list, 1)
	decode(t, s.do(http.MethodGet, fmt.Sprintf("/api/reservations/table/%d", t101), nil), &list)
	assert.Len(t, list, 1)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/release", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/api/reservations/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/admin/history", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.login()

	var history []struct {
		Reason   string `json:"reason"`
		Snapshot struct {
			TableNumber int `json:"table_number"`
		} `json:"snapshot"`
	}
	decode(t, s.do(http.MethodGet, "/api/admin/history?from="+today+"&to="+today, nil), &history)
	require.Len(t, history, 1)
	assert.Equal(t, "manual_release", history[0].Reason)
	assert.Equal(t, 101, history[0].Snapshot.TableNumber)

	w = s.do(http.MethodPost, "/api/admin/sweep", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodPost, "/api/admin/reports/export", map[string]string{"from": today, "to": today, "format": "pdf"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	compact := strings.ReplaceAll(today, "-", "")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "reservations_"+compact+"_"+compact+".pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = s.do(http.MethodPost, "/api/admin/reports/export", map[string]string{"from": today, "to": today, "format": "csv"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/admin/history", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSweepEndpoints(t *testing.T) {
	s := setupTestServer(t)
	s.login()

	var tables []struct {
		ID uint `json:"id"`
	}
	decode(t, s.do(http.MethodGet, "/api/tables/area/garden", nil), &tables)
	require.NotEmpty(t, tables)

	w := s.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"table_id":   tables[0].ID,
		"date":       s.clock.Today(),
		"time":       "20:00",
		"party_size": 2,
		"requester":  "Ana",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	s.clock.At = s.clock.At.AddDate(0, 0, 1)

	w = s.do(http.MethodPost, "/api/admin/sweep/promote", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res services.SweepResult
	decode(t, w, &res)
	assert.Equal(t, 0, res.Promoted)

	w = s.do(http.MethodPost, "/api/admin/sweep", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	assert.Equal(t, services.SweepResult{Expired: 1}, res)

	var metrics services.SweepMetrics
	decode(t, s.do(http.MethodGet, "/api/admin/sweep/metrics", nil), &metrics)
	assert.Equal(t, int64(1), metrics.Expired)
}

func TestTableEndpoints(t *testing.T) {
	s := setupTestServer(t)

	var interior, garden []struct {
		ID uint `json:"id"`
	}
	decode(t, s.do(http.MethodGet, "/api/tables/area/interior", nil), &interior)
	decode(t, s.do(http.MethodGet, "/api/tables/area/garden", nil), &garden)

	w := s.do(http.MethodGet, "/api/tables/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodGet, "/api/tables/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/tables/%d", interior[1].ID), map[string]string{"status": "occupied"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPut, fmt.Sprintf("/api/tables/%d", interior[1].ID), map[string]string{"status": "dirty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/tables/group", map[string]uint{"principal_id": interior[0].ID, "secondary_id": garden[0].ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/tables/group", map[string]uint{"principal_id": interior[0].ID, "secondary_id": interior[1].ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var group services.GroupResult
	decode(t, w, &group)
	assert.Equal(t, 8, group.Capacity)
	assert.Equal(t, "occupied", group.Members[0].Status)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/tables/group/%d", interior[0].ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/tables/group/%d", interior[0].ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var areas []struct {
		Name        string `json:"name"`
		GridColumns int    `json:"grid_columns"`
	}
	decode(t, s.do(http.MethodGet, "/api/layout", nil), &areas)
	require.Len(t, areas, 3)
	assert.Equal(t, "interior", areas[0].Name)

	var now struct {
		Date      string `json:"date"`
		Time      string `json:"time"`
		Timezone  string `json:"timezone"`
		UTCOffset string `json:"utc_offset"`
	}
	decode(t, s.do(http.MethodGet, "/api/current-date", nil), &now)
	assert.Equal(t, "2026-10-19", now.Date)
	assert.Equal(t, "18:00", now.Time)
	assert.Equal(t, "America/Phoenix", now.Timezone)
	assert.Equal(t, "-07:00", now.UTCOffset)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(http.MethodPost, "/login", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodPost, "/login", map[string]string{"username": "host", "password": "secret"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
