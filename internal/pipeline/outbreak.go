package pipeline

import (
	"sort"
	"strconv"

	"github.com/jengzang/epidash-backend-go/internal/models"
)

// FilterByCountry keeps the rows of one country. An empty name or "All"
// keeps every row.
func FilterByCountry(records []models.OutbreakRecord, country string) []models.OutbreakRecord {
	if country == "" || country == models.CountryAll {
		out := make([]models.OutbreakRecord, len(records))
		copy(out, records)
		return out
	}
	out := make([]models.OutbreakRecord, 0)
	for _, r := range records {
		if r.Country == country {
			out = append(out, r)
		}
	}
	return out
}

// Countries returns the distinct outbreak countries in ascending order
func Countries(records []models.OutbreakRecord) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Country]; ok {
			continue
		}
		seen[r.Country] = struct{}{}
		out = append(out, r.Country)
	}
	sort.Strings(out)
	return out
}

// OutbreakBars sums case counts per year, ascending
func OutbreakBars(records []models.OutbreakRecord) []models.Bar {
	byYear := make(map[int]float64)
	for _, r := range records {
		byYear[r.Year] += r.Cases
	}
	out := make([]models.Bar, 0, len(byYear))
	for y, v := range byYear {
		out = append(out, models.Bar{Label: strconv.Itoa(y), Year: y, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
