package pipeline

import (
	"fmt"
	"strconv"

	"github.com/jengzang/epidash-backend-go/internal/models"
	"github.com/jengzang/epidash-backend-go/internal/stats"
)

const notAvailable = "n/a"

// FormatNumber renders a count compactly: 1.2K, 3.4M, 5.6B
func FormatNumber(num float64) string {
	switch {
	case num >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", num/1_000_000_000)
	case num >= 1_000_000:
		return fmt.Sprintf("%.1fM", num/1_000_000)
	case num >= 1_000:
		return fmt.Sprintf("%.1fK", num/1_000)
	default:
		return strconv.FormatInt(int64(num), 10)
	}
}

func formatRate(rate *float64) string {
	if rate == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*rate, 'f', 2, 64)
}

func countKPI(label string, v *float64) models.KPI {
	k := models.KPI{Label: label, Value: v, Display: notAvailable}
	if v != nil {
		k.Display = FormatNumber(*v)
	}
	return k
}

// AverageFatality is the mean fatality rate over rows with a defined rate.
// It is nil when no row has one.
func AverageFatality(records []models.OutbreakRecord) *float64 {
	var rates []float64
	for _, r := range records {
		if rate := FatalityRate(r.Deaths, r.Cases); rate != nil {
			rates = append(rates, *rate)
		}
	}
	if len(rates) == 0 {
		return nil
	}
	avg := stats.Mean(rates)
	return &avg
}

// KPIs builds the indicator cards for the selected pandemic year and the
// filtered outbreak rows
func KPIs(agg models.YearlyAggregate, outbreak []models.OutbreakRecord) models.KPISet {
	cases := agg.TotalCases
	avg := AverageFatality(outbreak)

	rate := models.KPI{Label: "COVID Fatality Rate (%)", Value: agg.FatalityRate, Display: formatRate(agg.FatalityRate)}
	avgKPI := models.KPI{Label: "Avg Nipah Fatality Rate (%)", Value: avg, Display: formatRate(avg)}

	return models.KPISet{
		Year:                agg.Year,
		TotalCases:          countKPI("COVID Total Cases", &cases),
		TotalDeaths:         countKPI("COVID Total Deaths", agg.TotalDeaths),
		FatalityRate:        rate,
		AvgOutbreakFatality: avgKPI,
	}
}

// Distribution splits a year's cases into recovered/active and deaths
func Distribution(agg models.YearlyAggregate) []models.Slice {
	var deaths float64
	if agg.TotalDeaths != nil {
		deaths = *agg.TotalDeaths
	}
	slices := []models.Slice{
		{Label: "Recovered / Active", Value: agg.TotalCases - deaths},
		{Label: "Deaths", Value: deaths},
	}

	total := slices[0].Value + slices[1].Value
	if total > 0 {
		for i := range slices {
			p := slices[i].Value / total * 100
			slices[i].Percent = &p
		}
	}
	return slices
}
