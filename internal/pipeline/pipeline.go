// Package pipeline derives the dashboard views from the raw pandemic and
// outbreak tables. Every function is pure; a rendering pass recomputes all
// views from scratch.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/jengzang/epidash-backend-go/internal/models"
)

var (
	// ErrNoTimeseriesData is returned when no timeseries row survived cleaning
	ErrNoTimeseriesData = errors.New("timeseries has no usable rows")
	// ErrYearNotFound is returned when the selected year is not in the rollup
	ErrYearNotFound = errors.New("year not found in timeseries")
)

// Build runs the whole aggregation pipeline for one rendering pass
func Build(ts []models.TimeseriesRecord, ob []models.OutbreakRecord, geo Geocoder, filter models.DashboardFilter) (*models.Dashboard, error) {
	yearly := YearlyRollup(ts)
	first, last, ok := YearRange(yearly)
	if !ok {
		return nil, ErrNoTimeseriesData
	}
	if filter.Year == 0 {
		filter.Year = last
	}
	if filter.AllCountries() {
		filter.Country = models.CountryAll
	}

	selected, ok := FindYear(yearly, filter.Year)
	if !ok {
		return nil, fmt.Errorf("%w: %d (available %d-%d)", ErrYearNotFound, filter.Year, first, last)
	}

	outbreak := JoinCoordinates(OutbreakFatality(ob), geo)
	filtered := FilterByCountry(outbreak, filter.Country)
	latest := LatestSnapshot(ts)

	return &models.Dashboard{
		Filter:        filter,
		YearRange:     [2]int{first, last},
		Countries:     Countries(outbreak),
		KPIs:          KPIs(selected, filtered),
		Yearly:        yearly,
		FatalityTrend: FatalityTrend(yearly),
		CovidCaseBars: CaseBars(yearly),
		OutbreakBars:  OutbreakBars(filtered),
		Distribution:  Distribution(selected),
		Heatmap:       Pivot(outbreak),
		Choropleth:    Choropleth(latest),
		PointMap:      MapPoints(outbreak),
		OutbreakRows:  filtered,
		LatestRows:    latest,
	}, nil
}
