package pipeline

import (
	"sort"

	"github.com/jengzang/epidash-backend-go/internal/models"
	"github.com/jengzang/epidash-backend-go/internal/stats"
)

type pivotKey struct {
	country string
	year    int
}

// Pivot builds the country x year case matrix. Countries and years are
// sorted ascending; pairs absent from the input are zero. A pair that
// appears more than once holds the mean of its case counts.
func Pivot(records []models.OutbreakRecord) models.HeatmapMatrix {
	sums := make(map[pivotKey]float64)
	counts := make(map[pivotKey]int)
	countrySet := make(map[string]struct{})
	yearSet := make(map[int]struct{})

	for _, r := range records {
		k := pivotKey{r.Country, r.Year}
		sums[k] += r.Cases
		counts[k]++
		countrySet[r.Country] = struct{}{}
		yearSet[r.Year] = struct{}{}
	}

	m := models.HeatmapMatrix{
		Countries: make([]string, 0, len(countrySet)),
		Years:     make([]int, 0, len(yearSet)),
	}
	for c := range countrySet {
		m.Countries = append(m.Countries, c)
	}
	for y := range yearSet {
		m.Years = append(m.Years, y)
	}
	sort.Strings(m.Countries)
	sort.Ints(m.Years)

	m.Values = make([][]float64, len(m.Countries))
	flat := make([]float64, 0, len(m.Countries)*len(m.Years))
	for i, c := range m.Countries {
		m.Values[i] = make([]float64, len(m.Years))
		for j, y := range m.Years {
			k := pivotKey{c, y}
			if n := counts[k]; n > 0 {
				m.Values[i][j] = sums[k] / float64(n)
			}
			flat = append(flat, m.Values[i][j])
		}
	}

	intensity := stats.Normalize(flat)
	m.Cells = make([]models.HeatmapCell, 0, len(flat))
	for i, c := range m.Countries {
		for j, y := range m.Years {
			idx := i*len(m.Years) + j
			m.Cells = append(m.Cells, models.HeatmapCell{
				Country:   c,
				Year:      y,
				Value:     m.Values[i][j],
				Intensity: intensity[idx],
				Present:   counts[pivotKey{c, y}] > 0,
			})
		}
	}
	m.MinValue = stats.Min(flat)
	m.MaxValue = stats.Max(flat)
	return m
}
