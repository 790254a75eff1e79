package models

// HeatmapCell represents a single country/year cell of the heatmap
type HeatmapCell struct {
	Country   string  `json:"country"`
	Year      int     `json:"year"`
	Value     float64 `json:"value"`     // Case count, 0 when the pair is absent
	Intensity float64 `json:"intensity"` // Normalized 0-1
	Present   bool    `json:"present"`   // False for zero-filled cells
}

// HeatmapMatrix is the country x year case matrix
type HeatmapMatrix struct {
	Countries []string      `json:"countries"` // Row labels
	Years     []int         `json:"years"`     // Column labels
	Values    [][]float64   `json:"values"`    // Values[row][col]
	Cells     []HeatmapCell `json:"cells"`     // Flattened, row-major
	MaxValue  float64       `json:"max_value"`
	MinValue  float64       `json:"min_value"`
}

// Value returns the cell value for a country/year pair, or 0 when either is unknown
func (m HeatmapMatrix) Value(country string, year int) float64 {
	row := -1
	for i, c := range m.Countries {
		if c == country {
			row = i
			break
		}
	}
	if row < 0 {
		return 0
	}
	for j, y := range m.Years {
		if y == year {
			return m.Values[row][j]
		}
	}
	return 0
}
