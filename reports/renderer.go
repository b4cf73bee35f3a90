package reports

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/table-reservations/services"
	"github.com/yeremiapane/table-reservations/utils"
)

var ErrUnknownFormat = errors.New("unknown report format")

// DefaultTitle is printed at the top of every report unless overridden.
const DefaultTitle = "Reservations Report"

// Renderer turns a built report into a downloadable document.
type Renderer interface {
	Render(r *services.Report) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat picks a renderer by name: "pdf", or "excel" (also "xlsx").
func ForFormat(format, title string) (Renderer, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "pdf":
		return &PDFRenderer{Title: title}, nil
	case "excel", "xlsx":
		return &ExcelRenderer{Title: title}, nil
	}
	return nil, fmt.Errorf("%w %q, expected pdf or excel", ErrUnknownFormat, format)
}

// FileName builds reservations_YYYYMMDD_YYYYMMDD.<ext> for a report period.
func FileName(r *services.Report, rd Renderer) string {
	compact := func(d string) string { return strings.ReplaceAll(d, "-", "") }
	return fmt.Sprintf("reservations_%s_%s.%s", compact(r.From), compact(r.To), rd.Extension())
}

var columns = []string{"Date", "Time", "Requester", "Table", "Area", "Guests", "Phone", "Note", "Exit time", "Status"}

func cells(row services.ReportRow) []string {
	exit := "-"
	if row.ReleaseTime != nil {
		exit = *row.ReleaseTime
	}
	return []string{
		utils.FormatDisplayDate(row.Date),
		row.Time,
		row.Requester,
		fmt.Sprintf("%d", row.TableNumber),
		areaLabel(row.Area),
		fmt.Sprintf("%d", row.PartySize),
		dash(row.Phone),
		dash(row.Note),
		exit,
		statusLabel(row.Status),
	}
}

func statusLabel(status string) string {
	switch status {
	case services.RowActive:
		return "Active"
	case services.RowReleased:
		return "Released"
	case services.RowExpired:
		return "Expired (no exit recorded)"
	}
	return status
}

func areaLabel(area string) string {
	if area == "" {
		return "-"
	}
	return strings.ToUpper(area[:1]) + area[1:]
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func period(r *services.Report) string {
	return fmt.Sprintf("Period: %s - %s", utils.FormatDisplayDate(r.From), utils.FormatDisplayDate(r.To))
}

// summary lists the headline figures shared by every format.
func summary(r *services.Report) [][2]string {
	stay := "-"
	if r.StaySamples > 0 {
		stay = fmt.Sprintf("%.0f min (%d samples)", r.AverageStayMinutes, r.StaySamples)
	}
	slot := "-"
	if r.PopularSlot != "" {
		slot = fmt.Sprintf("%s (%d reservations)", r.PopularSlot, r.PopularSlotCount)
	}
	return [][2]string{
		{"Reservations", fmt.Sprintf("%d", r.TotalReservations)},
		{"Guests", fmt.Sprintf("%d", r.TotalGuests)},
		{"Average party", fmt.Sprintf("%.1f", r.AverageGuests)},
		{"Average stay", stay},
		{"Completed", fmt.Sprintf("%d/%d (%.1f%%)", r.Completed, r.TotalReservations, r.CompletionRate())},
		{"Popular time", slot},
	}
}
