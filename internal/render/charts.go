// Package render draws the dashboard charts as PNG images for clients
// that do not bring their own charting library.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/jengzang/epidash-backend-go/internal/models"
)

// ErrNothingToPlot is returned for series with no drawable values
var ErrNothingToPlot = errors.New("nothing to plot")

const (
	defaultWidth  = 800
	defaultHeight = 480
	barWidth      = 40
	barSpacing    = 20
)

const fatalityTrendTitle = "COVID-19 Fatality Rate Trend"

// FatalityTrend draws the yearly fatality rate line chart. Years with an
// undefined rate are skipped. A single year is drawn as one bar since a
// line needs two x values.
func FatalityTrend(points []models.TrendPoint) ([]byte, error) {
	var xs, ys []float64
	var ticks []chart.Tick
	for _, p := range points {
		if p.FatalityRate == nil {
			continue
		}
		xs = append(xs, float64(p.Year))
		ys = append(ys, *p.FatalityRate)
		ticks = append(ticks, chart.Tick{Value: float64(p.Year), Label: strconv.Itoa(p.Year)})
	}
	switch len(xs) {
	case 0:
		return nil, ErrNothingToPlot
	case 1:
		return Bars(fatalityTrendTitle, []models.Bar{
			{Label: ticks[0].Label, Year: int(xs[0]), Value: ys[0]},
		})
	}

	ch := chart.Chart{
		Title:  fatalityTrendTitle,
		Width:  defaultWidth,
		Height: defaultHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  "Year",
			Range: &chart.ContinuousRange{Min: xs[0] - 0.5, Max: xs[len(xs)-1] + 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "Fatality Rate (%)",
			Range: &chart.ContinuousRange{Min: 0, Max: upperBound(ys)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Fatality rate",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{DotWidth: 4, StrokeWidth: 2},
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render fatality trend: %w", err)
	}
	return buf.Bytes(), nil
}

// Bars draws a bar chart with one bar per entry
func Bars(title string, bars []models.Bar) ([]byte, error) {
	if len(bars) == 0 {
		return nil, ErrNothingToPlot
	}

	values := make([]chart.Value, len(bars))
	ys := make([]float64, len(bars))
	for i, b := range bars {
		values[i] = chart.Value{Label: b.Label, Value: b.Value}
		ys[i] = b.Value
	}

	width := defaultWidth
	if w := 120 + len(bars)*(barWidth+barSpacing); w > width {
		width = w
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     defaultHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: upperBound(ys)},
		},
		Bars: values,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", title, err)
	}
	return buf.Bytes(), nil
}

// Distribution draws the case distribution pie chart
func Distribution(slices []models.Slice) ([]byte, error) {
	var values []chart.Value
	var total float64
	for _, s := range slices {
		v := math.Max(s.Value, 0)
		if v == 0 {
			continue
		}
		total += v
		label := s.Label
		if s.Percent != nil {
			label = fmt.Sprintf("%s %.1f%%", s.Label, *s.Percent)
		}
		values = append(values, chart.Value{Label: label, Value: v})
	}
	if total == 0 {
		return nil, ErrNothingToPlot
	}

	pc := chart.PieChart{
		Title:  "COVID-19 Case Distribution",
		Width:  defaultHeight,
		Height: defaultHeight,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render distribution: %w", err)
	}
	return buf.Bytes(), nil
}

// upperBound pads the largest value so the top of the plot has headroom.
// All-zero series get a unit range.
func upperBound(values []float64) float64 {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return 1
	}
	return max * 1.1
}
