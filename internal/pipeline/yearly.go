package pipeline

import (
	"sort"
	"strconv"

	"github.com/jengzang/epidash-backend-go/internal/models"
)

// YearlyRollup groups timeseries records by calendar year and keeps the
// maximum cumulative case and death counts of each year. Years are
// returned in ascending order.
func YearlyRollup(records []models.TimeseriesRecord) []models.YearlyAggregate {
	byYear := make(map[int]*models.YearlyAggregate)
	for _, r := range records {
		y := r.Year()
		agg, ok := byYear[y]
		if !ok {
			agg = &models.YearlyAggregate{Year: y, TotalCases: r.TotalCases}
			byYear[y] = agg
		}
		if r.TotalCases > agg.TotalCases {
			agg.TotalCases = r.TotalCases
		}
		if r.TotalDeaths != nil && (agg.TotalDeaths == nil || *r.TotalDeaths > *agg.TotalDeaths) {
			d := *r.TotalDeaths
			agg.TotalDeaths = &d
		}
	}

	out := make([]models.YearlyAggregate, 0, len(byYear))
	for _, agg := range byYear {
		if agg.TotalDeaths != nil {
			agg.FatalityRate = FatalityRate(*agg.TotalDeaths, agg.TotalCases)
		}
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// YearRange returns the first and last year of an ascending rollup
func YearRange(yearly []models.YearlyAggregate) (int, int, bool) {
	if len(yearly) == 0 {
		return 0, 0, false
	}
	return yearly[0].Year, yearly[len(yearly)-1].Year, true
}

// FindYear returns the aggregate for a year
func FindYear(yearly []models.YearlyAggregate, year int) (models.YearlyAggregate, bool) {
	i := sort.Search(len(yearly), func(i int) bool { return yearly[i].Year >= year })
	if i < len(yearly) && yearly[i].Year == year {
		return yearly[i], true
	}
	return models.YearlyAggregate{}, false
}

// FatalityTrend extracts the line chart series from a rollup
func FatalityTrend(yearly []models.YearlyAggregate) []models.TrendPoint {
	out := make([]models.TrendPoint, len(yearly))
	for i, y := range yearly {
		out[i] = models.TrendPoint{Year: y.Year, FatalityRate: y.FatalityRate}
	}
	return out
}

// CaseBars returns yearly cumulative cases in millions
func CaseBars(yearly []models.YearlyAggregate) []models.Bar {
	out := make([]models.Bar, len(yearly))
	for i, y := range yearly {
		out[i] = models.Bar{
			Label: strconv.Itoa(y.Year),
			Year:  y.Year,
			Value: y.TotalCases / 1e6,
		}
	}
	return out
}
