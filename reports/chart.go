package reports

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/yeremiapane/table-reservations/services"
)

const (
	chartWidth  = 900
	chartHeight = 360
)

// areaChart draws guests per area as a PNG bar chart. It returns nil when the
// report has nothing to plot.
func areaChart(r *services.Report) ([]byte, error) {
	if len(r.Areas) == 0 {
		return nil, nil
	}

	peak := 0
	bars := make([]chart.Value, 0, len(r.Areas))
	for _, a := range r.Areas {
		if a.Guests > peak {
			peak = a.Guests
		}
		bars = append(bars, chart.Value{
			Label: areaLabel(a.Area),
			Value: float64(a.Guests),
		})
	}

	graph := chart.BarChart{
		Title:  "Guests per area",
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		// bars start at zero, a single area would otherwise have an empty range
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(peak) * 1.2},
		},
		BarWidth: 80,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
