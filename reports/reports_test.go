package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yeremiapane/table-reservations/services"
)

func sampleReport() *services.Report {
	exit := "21:15"
	return &services.Report{
		From:        "2026-10-19",
		To:          "2026-10-20",
		GeneratedAt: time.Date(2026, 10, 20, 9, 30, 0, 0, time.UTC),
		Rows: []services.ReportRow{
			{Date: "2026-10-19", Time: "19:00", TableNumber: 101, Area: "interior", PartySize: 4, Requester: "Juan Pérez", Status: services.RowReleased, ReleaseTime: &exit},
			{Date: "2026-10-19", Time: "20:00", TableNumber: 302, Area: "garden", PartySize: 2, Requester: "Ana", Phone: "555-0101", Status: services.RowExpired},
			{Date: "2026-10-20", Time: "19:00", TableNumber: 28, Area: "private", PartySize: 20, Requester: "Birthday", Note: "Cake at 21:00, please keep the lights dimmed for the surprise entrance", Status: services.RowActive},
		},
		TotalReservations:  3,
		TotalGuests:        26,
		Completed:          2,
		AverageGuests:      26.0 / 3,
		AverageStayMinutes: 135,
		StaySamples:        1,
		Areas: []services.AreaSummary{
			{Area: "interior", Reservations: 1, Guests: 4},
			{Area: "garden", Reservations: 1, Guests: 2},
			{Area: "private", Reservations: 1, Guests: 20},
		},
		PopularSlot:      "19:00",
		PopularSlotCount: 2,
	}
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat("PDF", "")
	require.NoError(t, err)
	assert.Equal(t, "pdf", r.Extension())
	assert.Equal(t, DefaultTitle, r.(*PDFRenderer).Title)

	r, err = ForFormat("excel", "Monthly")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", r.Extension())
	assert.Equal(t, "Monthly", r.(*ExcelRenderer).Title)

	_, err = ForFormat("xlsx", "")
	assert.NoError(t, err)

	_, err = ForFormat("csv", "")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFileName(t *testing.T) {
	rep := sampleReport()
	assert.Equal(t, "reservations_20261019_20261020.pdf", FileName(rep, &PDFRenderer{}))
	assert.Equal(t, "reservations_20261019_20261020.xlsx", FileName(rep, &ExcelRenderer{}))
}

func TestCells(t *testing.T) {
	rep := sampleReport()

	got := cells(rep.Rows[0])
	assert.Equal(t, []string{"19/10/2026", "19:00", "Juan Pérez", "101", "Interior", "4", "-", "-", "21:15", "Released"}, got)
	assert.Equal(t, "Expired (no exit recorded)", cells(rep.Rows[1])[9])
}

func TestPDFRenderer(t *testing.T) {
	out, err := (&PDFRenderer{Title: DefaultTitle}).Render(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	empty := &services.Report{From: "2026-10-19", To: "2026-10-19", Areas: []services.AreaSummary{}}
	out, err = (&PDFRenderer{Title: DefaultTitle}).Render(empty)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestAreaChart(t *testing.T) {
	png, err := areaChart(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	png, err = areaChart(&services.Report{})
	require.NoError(t, err)
	assert.Nil(t, png)
}

func TestExcelRenderer(t *testing.T) {
	out, err := (&ExcelRenderer{Title: "Reservations Report"}).Render(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{reservationsSheet, summarySheet}, f.GetSheetList())

	title, err := f.GetCellValue(reservationsSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Reservations Report", title)

	header, err := f.GetCellValue(reservationsSheet, "C6")
	require.NoError(t, err)
	assert.Equal(t, "Requester", header)

	requester, err := f.GetCellValue(reservationsSheet, "C7")
	require.NoError(t, err)
	assert.Equal(t, "Juan Pérez", requester)

	table, err := f.GetCellValue(reservationsSheet, "D9")
	require.NoError(t, err)
	assert.Equal(t, "28", table)

	area, err := f.GetCellValue(summarySheet, "A11")
	require.NoError(t, err)
	assert.Equal(t, "Interior", area)
}
