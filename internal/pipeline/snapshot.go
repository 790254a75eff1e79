package pipeline

import (
	"sort"
	"strings"

	"github.com/jengzang/epidash-backend-go/internal/models"
	"github.com/jengzang/epidash-backend-go/internal/stats"
)

// aggregatePrefix marks OWID rows for continents, income groups and the world
const aggregatePrefix = "OWID_"

// LatestRecords keeps the most recent record of every location. Records are
// ordered by date with a stable sort, so for equal dates the later row in
// the input wins. The result is ordered by location and is idempotent:
// LatestRecords(LatestRecords(x)) equals LatestRecords(x).
func LatestRecords(records []models.TimeseriesRecord) []models.TimeseriesRecord {
	sorted := make([]models.TimeseriesRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	latest := make(map[string]models.TimeseriesRecord, len(sorted))
	for _, r := range sorted {
		latest[r.Location] = r
	}

	out := make([]models.TimeseriesRecord, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

// LatestSnapshot returns the latest observation of every location
func LatestSnapshot(records []models.TimeseriesRecord) []models.LocationSnapshot {
	latest := LatestRecords(records)
	out := make([]models.LocationSnapshot, len(latest))
	for i, r := range latest {
		out[i] = models.LocationSnapshot{
			ISOCode:     r.ISOCode,
			Location:    r.Location,
			Date:        r.Date.Format("2006-01-02"),
			TotalCases:  r.TotalCases,
			TotalDeaths: r.TotalDeaths,
			Population:  r.Population,
			Aggregate:   strings.HasPrefix(r.ISOCode, aggregatePrefix),
		}
	}
	return out
}

// Choropleth shades countries by their latest total cases. Aggregate rows
// are left out since they have no map region.
func Choropleth(snapshots []models.LocationSnapshot) models.Choropleth {
	out := models.Choropleth{Entries: []models.ChoroplethEntry{}, ColorBreaks: []float64{}}

	var values []float64
	for _, s := range snapshots {
		if s.Aggregate {
			continue
		}
		out.Entries = append(out.Entries, models.ChoroplethEntry{
			ISOCode:    s.ISOCode,
			Location:   s.Location,
			TotalCases: s.TotalCases,
		})
		values = append(values, s.TotalCases)
	}
	if len(values) == 0 {
		return out
	}

	out.MaxValue = stats.Max(values)
	out.ColorBreaks = stats.Percentiles(values, []float64{20, 40, 60, 80})
	return out
}
