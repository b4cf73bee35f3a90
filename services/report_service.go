package services

import (
	"context"
	"sort"
	"time"

	"github.com/yeremiapane/table-reservations/models"
	"github.com/yeremiapane/table-reservations/utils"
)

const (
	RowActive   = "active"
	RowReleased = "released"
	RowExpired  = "expired"
)

// ReportRow is one reservation in a report, live or archived.
type ReportRow struct {
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	TableNumber int     `json:"table_number"`
	Area        string  `json:"area"`
	PartySize   int     `json:"party_size"`
	Requester   string  `json:"requester"`
	Phone       string  `json:"phone"`
	Note        string  `json:"note"`
	Status      string  `json:"status"`
	ReleaseTime *string `json:"release_time,omitempty"`
}

type AreaSummary struct {
	Area         string `json:"area"`
	Reservations int    `json:"reservations"`
	Guests       int    `json:"guests"`
}

type Report struct {
	From        string      `json:"from"`
	To          string      `json:"to"`
	GeneratedAt time.Time   `json:"generated_at"`
	Rows        []ReportRow `json:"rows"`

	TotalReservations  int           `json:"total_reservations"`
	TotalGuests        int           `json:"total_guests"`
	Completed          int           `json:"completed"`
	AverageGuests      float64       `json:"average_guests"`
	AverageStayMinutes float64       `json:"average_stay_minutes"`
	StaySamples        int           `json:"stay_samples"`
	Areas              []AreaSummary `json:"areas"`
	PopularSlot        string        `json:"popular_slot"`
	PopularSlotCount   int           `json:"popular_slot_count"`
}

type ReportService struct {
	store *Store
}

func NewReportService(store *Store) *ReportService {
	return &ReportService{store: store}
}

// Build collects live and archived reservations dated within [from, to] and
// computes the report aggregates.
func (rs *ReportService) Build(ctx context.Context, from, to string) (*Report, error) {
	from, to, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	db := rs.store.read(ctx)

	var active []models.Reservation
	if err := db.Where("date >= ? AND date <= ?", from, to).
		Order("date, time, id").Find(&active).Error; err != nil {
		return nil, storageError(err)
	}

	var archived []models.ReservationHistory
	if err := db.Where("date >= ? AND date <= ?", from, to).
		Order("date, time, id").Find(&archived).Error; err != nil {
		return nil, storageError(err)
	}

	var tables []models.Table
	if err := db.Find(&tables).Error; err != nil {
		return nil, storageError(err)
	}
	numbers := make(map[uint]int, len(tables))
	for _, t := range tables {
		numbers[t.ID] = t.Number
	}

	rows := make([]ReportRow, 0, len(active)+len(archived))
	for _, r := range active {
		rows = append(rows, ReportRow{
			Date:        r.Date,
			Time:        r.Time,
			TableNumber: numbers[r.TableID],
			Area:        r.Area,
			PartySize:   r.PartySize,
			Requester:   r.Requester,
			Phone:       deref(r.Phone),
			Note:        deref(r.Note),
			Status:      RowActive,
		})
	}

	staySum, staySamples := 0, 0
	for _, h := range archived {
		s := h.Snapshot
		status := RowReleased
		if h.Reason == models.ReleaseExpired {
			status = RowExpired
		}
		row := ReportRow{
			Date:        s.Date,
			Time:        s.Time,
			TableNumber: s.TableNumber,
			Area:        s.Area,
			PartySize:   s.PartySize,
			Requester:   s.Requester,
			Phone:       deref(s.Phone),
			Note:        deref(s.Note),
			Status:      status,
		}
		if status == RowReleased {
			row.ReleaseTime = h.ReleaseTime
		}
		if d, ok := stayMinutes(s.Time, h.ReleaseTime); ok {
			staySum += d
			staySamples++
		}
		rows = append(rows, row)
	}

	// active rows were appended first, so they stay ahead on equal keys
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].Time < rows[j].Time
	})

	report := &Report{
		From:        from,
		To:          to,
		GeneratedAt: rs.store.Clock.Now(),
		Rows:        rows,
		StaySamples: staySamples,
		Areas:       []AreaSummary{},
	}
	if staySamples > 0 {
		report.AverageStayMinutes = float64(staySum) / float64(staySamples)
	}

	areaIndex := map[string]int{}
	slotCounts := map[string]int{}
	var slots []string
	for _, row := range rows {
		report.TotalReservations++
		report.TotalGuests += row.PartySize
		if row.Status != RowActive {
			report.Completed++
		}

		i, ok := areaIndex[row.Area]
		if !ok {
			i = len(report.Areas)
			areaIndex[row.Area] = i
			report.Areas = append(report.Areas, AreaSummary{Area: row.Area})
		}
		report.Areas[i].Reservations++
		report.Areas[i].Guests += row.PartySize

		if _, seen := slotCounts[row.Time]; !seen {
			slots = append(slots, row.Time)
		}
		slotCounts[row.Time]++
	}
	// ties go to the slot that shows up first in the sorted rows
	for _, slot := range slots {
		if slotCounts[slot] > report.PopularSlotCount {
			report.PopularSlot = slot
			report.PopularSlotCount = slotCounts[slot]
		}
	}
	if report.TotalReservations > 0 {
		report.AverageGuests = float64(report.TotalGuests) / float64(report.TotalReservations)
	}
	return report, nil
}

// CompletionRate is the share of reservations already released or expired,
// as a percentage.
func (r *Report) CompletionRate() float64 {
	if r.TotalReservations == 0 {
		return 0
	}
	return float64(r.Completed) * 100 / float64(r.TotalReservations)
}

// stayMinutes is the time between sitting down and release. A release before
// the reservation time is taken as past midnight.
func stayMinutes(start string, release *string) (int, bool) {
	if release == nil {
		return 0, false
	}
	a, err := utils.MinutesOfDay(start)
	if err != nil {
		return 0, false
	}
	b, err := utils.MinutesOfDay(*release)
	if err != nil {
		return 0, false
	}
	d := b - a
	if d < 0 {
		d += 24 * 60
	}
	return d, d > 0
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
