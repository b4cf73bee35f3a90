package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"github.com/yeremiapane/table-reservations/services"
)

const (
	reservationsSheet = "Reservations"
	summarySheet      = "Summary"
	// first data row on the reservations sheet, rows above hold title,
	// period, summary and header
	excelHeaderRow = 6
)

var excelColumnWidths = []float64{12, 8, 25, 8, 12, 10, 15, 35, 12, 26}

// ExcelRenderer writes the report as an XLSX workbook with a reservations
// sheet and a per-area summary sheet.
type ExcelRenderer struct {
	Title string
}

func (e *ExcelRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *ExcelRenderer) Extension() string { return "xlsx" }

func (e *ExcelRenderer) Render(r *services.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reservationsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	styles, err := newExcelStyles(f)
	if err != nil {
		return nil, err
	}

	if err := e.writeReservations(f, styles, r); err != nil {
		return nil, err
	}
	if err := e.writeSummary(f, styles, r); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

type excelStyles struct {
	title  int
	header int
	label  int
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	var err error

	s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create title style: %w", err)
	}

	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#2C3E50"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}

	s.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return s, fmt.Errorf("failed to create label style: %w", err)
	}
	return s, nil
}

func (e *ExcelRenderer) writeReservations(f *excelize.File, st excelStyles, r *services.Report) error {
	sheet := reservationsSheet
	last, _ := excelize.ColumnNumberToName(len(columns))

	if err := f.MergeCell(sheet, "A1", last+"1"); err != nil {
		return err
	}
	f.SetCellValue(sheet, "A1", e.Title)
	f.SetCellStyle(sheet, "A1", "A1", st.title)

	if err := f.MergeCell(sheet, "A2", last+"2"); err != nil {
		return err
	}
	f.SetCellValue(sheet, "A2", period(r))

	// headline figures on one row as label/value pairs
	col := 1
	for _, kv := range summary(r)[:4] {
		if err := setCell(f, sheet, col, 4, kv[0]); err != nil {
			return err
		}
		cell, _ := excelize.CoordinatesToCellName(col, 4)
		f.SetCellStyle(sheet, cell, cell, st.label)
		if err := setCell(f, sheet, col+1, 4, kv[1]); err != nil {
			return err
		}
		col += 2
	}

	for i, title := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, excelHeaderRow)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.header); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, w := range excelColumnWidths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range r.Rows {
		values := cells(row)
		for c, v := range values {
			var value interface{} = v
			switch c {
			case 3:
				value = row.TableNumber
			case 5:
				value = row.PartySize
			}
			if err := setCell(f, sheet, c+1, excelHeaderRow+1+i, value); err != nil {
				return fmt.Errorf("failed to set cell value at row %d: %w", i, err)
			}
		}
	}

	topLeft, _ := excelize.CoordinatesToCellName(1, excelHeaderRow+1)
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      excelHeaderRow,
		TopLeftCell: topLeft,
		ActivePane:  "bottomLeft",
	})
}

func (e *ExcelRenderer) writeSummary(f *excelize.File, st excelStyles, r *services.Report) error {
	sheet := summarySheet
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	f.SetCellValue(sheet, "A1", "Summary")
	f.SetCellStyle(sheet, "A1", "A1", st.title)

	row := 3
	for _, kv := range summary(r) {
		setCell(f, sheet, 1, row, kv[0])
		setCell(f, sheet, 2, row, kv[1])
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellStyle(sheet, cell, cell, st.label)
		row++
	}

	row++
	for i, title := range []string{"Area", "Reservations", "Guests", "Avg party"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, title)
		f.SetCellStyle(sheet, cell, cell, st.header)
	}
	for _, a := range r.Areas {
		row++
		setCell(f, sheet, 1, row, areaLabel(a.Area))
		setCell(f, sheet, 2, row, a.Reservations)
		setCell(f, sheet, 3, row, a.Guests)
		setCell(f, sheet, 4, row, float64(a.Guests)/float64(a.Reservations))
	}

	return f.SetColWidth(sheet, "A", "D", 22)
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
