package reports

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/table-reservations/services"
)

// Column widths in mm for the reservations table, landscape A4.
var pdfColumnWidths = []float64{22, 14, 42, 14, 22, 16, 30, 60, 20, 37}

// PDFRenderer lays the report out as a landscape A4 document: header, summary,
// reservations table, per-area breakdown and a guests-per-area chart.
type PDFRenderer struct {
	Title string
}

func (p *PDFRenderer) ContentType() string { return "application/pdf" }
func (p *PDFRenderer) Extension() string   { return "pdf" }

func (p *PDFRenderer) Render(r *services.Report) ([]byte, error) {
	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetTitle(p.Title, true)
	doc.SetAutoPageBreak(true, 15)
	doc.SetFooterFunc(func() {
		doc.SetY(-12)
		doc.SetFont("Helvetica", "I", 8)
		doc.CellFormat(0, 8, fmt.Sprintf("Page %d", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 10, tr(p.Title), "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 7, tr(period(r)), "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 8)
	doc.CellFormat(0, 5, "Generated "+r.GeneratedAt.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	for _, kv := range summary(r) {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(45, 6, kv[0], "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, "Reservations", "", 1, "L", false, 0, "")
	if len(r.Rows) == 0 {
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 8, "No reservations in the selected period", "", 1, "L", false, 0, "")
	} else {
		pdfHeader(doc, columns, pdfColumnWidths)
		doc.SetFont("Helvetica", "", 8)
		for i, row := range r.Rows {
			fill := i%2 == 1
			doc.SetFillColor(242, 242, 242)
			for c, text := range cells(row) {
				w := pdfColumnWidths[c]
				doc.CellFormat(w, 6, fit(doc, tr(text), w-2), "1", 0, "L", fill, 0, "")
			}
			doc.Ln(-1)
		}
	}
	doc.Ln(6)

	if len(r.Areas) > 0 {
		doc.SetFont("Helvetica", "B", 12)
		doc.CellFormat(0, 8, "By area", "", 1, "L", false, 0, "")
		widths := []float64{50, 40, 40, 40}
		pdfHeader(doc, []string{"Area", "Reservations", "Guests", "Avg party"}, widths)
		doc.SetFont("Helvetica", "", 9)
		for _, a := range r.Areas {
			avg := float64(a.Guests) / float64(a.Reservations)
			values := []string{areaLabel(a.Area), fmt.Sprintf("%d", a.Reservations), fmt.Sprintf("%d", a.Guests), fmt.Sprintf("%.1f", avg)}
			for c, v := range values {
				doc.CellFormat(widths[c], 6, tr(v), "1", 0, "L", false, 0, "")
			}
			doc.Ln(-1)
		}

		png, err := areaChart(r)
		if err != nil {
			return nil, fmt.Errorf("cannot draw area chart: %w", err)
		}
		if png != nil {
			doc.AddPage()
			opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
			doc.RegisterImageOptionsReader("areas", opts, bytes.NewReader(png))
			doc.ImageOptions("areas", 20, 25, 250, 0, false, opts, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("cannot render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfHeader(doc *fpdf.Fpdf, titles []string, widths []float64) {
	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(44, 62, 80)
	doc.SetTextColor(255, 255, 255)
	for i, t := range titles {
		doc.CellFormat(widths[i], 7, t, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)
	doc.SetTextColor(0, 0, 0)
}

// fit shortens already translated single-byte text with an ellipsis until it
// fits in w mm.
func fit(doc *fpdf.Fpdf, text string, w float64) string {
	if doc.GetStringWidth(text) <= w {
		return text
	}
	b := []byte(text)
	for len(b) > 0 && doc.GetStringWidth(string(b)+"...") > w {
		b = b[:len(b)-1]
	}
	return string(b) + "..."
}
