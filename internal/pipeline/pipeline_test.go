package pipeline

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/epidash-backend-go/internal/models"
	"github.com/jengzang/epidash-backend-go/internal/spatial"
)

func f(v float64) *float64 { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleTimeseries() []models.TimeseriesRecord {
	return []models.TimeseriesRecord{
		{ISOCode: "XXX", Location: "X", Date: day("2020-06-01"), TotalCases: 50, TotalDeaths: f(5)},
		{ISOCode: "XXX", Location: "X", Date: day("2020-01-01"), TotalCases: 10},
		{ISOCode: "YYY", Location: "Y", Date: day("2021-02-01"), TotalCases: 200, TotalDeaths: f(4), Population: f(1000)},
		{ISOCode: "OWID_WRL", Location: "World", Date: day("2021-02-01"), TotalCases: 1000, TotalDeaths: f(20)},
	}
}

func sampleOutbreak() []models.OutbreakRecord {
	return []models.OutbreakRecord{
		{Year: 2018, Country: "India", Cases: 19, Deaths: 17},
		{Year: 2019, Country: "India", Cases: 5, Deaths: 2},
		{Year: 2001, Country: "Bangladesh", Cases: 13, Deaths: 9},
		{Year: 2019, Country: "Philippines", Cases: 0, Deaths: 0},
	}
}

func TestFatalityRate(t *testing.T) {
	rate := FatalityRate(17, 19)
	require.NotNil(t, rate)
	assert.InDelta(t, 89.47, *rate, 0.005)

	rate = FatalityRate(2, 5)
	require.NotNil(t, rate)
	assert.InDelta(t, 40.0, *rate, 1e-9)

	assert.Nil(t, FatalityRate(0, 0), "zero cases has no defined rate")
	assert.Nil(t, FatalityRate(3, 0))
	assert.Nil(t, FatalityRate(3, -1))
}

func TestOutbreakFatality(t *testing.T) {
	out := OutbreakFatality(sampleOutbreak())
	require.Len(t, out, 4)

	assert.InDelta(t, 89.47, *out[0].FatalityRate, 0.005)
	assert.InDelta(t, 40.0, *out[1].FatalityRate, 1e-9)
	assert.Nil(t, out[3].FatalityRate)
	for _, r := range out {
		if r.FatalityRate != nil {
			assert.False(t, math.IsNaN(*r.FatalityRate))
		}
	}
}

func TestYearlyRollup(t *testing.T) {
	yearly := YearlyRollup(sampleTimeseries())
	require.Len(t, yearly, 2)

	assert.Equal(t, 2020, yearly[0].Year)
	assert.Equal(t, 50.0, yearly[0].TotalCases)
	require.NotNil(t, yearly[0].TotalDeaths)
	assert.Equal(t, 5.0, *yearly[0].TotalDeaths)
	assert.InDelta(t, 10.0, *yearly[0].FatalityRate, 1e-9)

	assert.Equal(t, 2021, yearly[1].Year)
	assert.Equal(t, 1000.0, yearly[1].TotalCases, "max across every location of the year")
	assert.InDelta(t, 2.0, *yearly[1].FatalityRate, 1e-9)
}

func TestYearlyRollup_NoDeaths(t *testing.T) {
	yearly := YearlyRollup([]models.TimeseriesRecord{
		{Location: "X", Date: day("2020-01-01"), TotalCases: 10},
	})
	require.Len(t, yearly, 1)
	assert.Nil(t, yearly[0].TotalDeaths)
	assert.Nil(t, yearly[0].FatalityRate)
}

func TestYearlyRollup_ZeroCases(t *testing.T) {
	yearly := YearlyRollup([]models.TimeseriesRecord{
		{Location: "X", Date: day("2020-01-01"), TotalCases: 0, TotalDeaths: f(0)},
	})
	require.Len(t, yearly, 1)
	assert.Nil(t, yearly[0].FatalityRate)
}

func TestFindYear(t *testing.T) {
	yearly := YearlyRollup(sampleTimeseries())

	agg, ok := FindYear(yearly, 2021)
	require.True(t, ok)
	assert.Equal(t, 2021, agg.Year)

	_, ok = FindYear(yearly, 2019)
	assert.False(t, ok)

	first, last, ok := YearRange(yearly)
	require.True(t, ok)
	assert.Equal(t, 2020, first)
	assert.Equal(t, 2021, last)

	_, _, ok = YearRange(nil)
	assert.False(t, ok)
}

func TestLatestSnapshot(t *testing.T) {
	snaps := LatestSnapshot(sampleTimeseries())
	require.Len(t, snaps, 3)

	assert.Equal(t, "World", snaps[0].Location)
	assert.True(t, snaps[0].Aggregate)

	assert.Equal(t, "X", snaps[1].Location)
	assert.Equal(t, "2020-06-01", snaps[1].Date)
	assert.Equal(t, 50.0, snaps[1].TotalCases)

	assert.Equal(t, "Y", snaps[2].Location)
	assert.False(t, snaps[2].Aggregate)
}

func TestLatestRecords_Idempotent(t *testing.T) {
	once := LatestRecords(sampleTimeseries())
	twice := LatestRecords(once)
	assert.Equal(t, once, twice)
}

func TestLatestRecords_TieKeepsLaterRow(t *testing.T) {
	records := []models.TimeseriesRecord{
		{Location: "X", Date: day("2020-01-01"), TotalCases: 1},
		{Location: "X", Date: day("2020-01-01"), TotalCases: 2},
	}
	latest := LatestRecords(records)
	require.Len(t, latest, 1)
	assert.Equal(t, 2.0, latest[0].TotalCases)
}

func TestChoropleth(t *testing.T) {
	c := Choropleth(LatestSnapshot(sampleTimeseries()))
	require.Len(t, c.Entries, 2, "aggregate rows have no map region")
	assert.Equal(t, "XXX", c.Entries[0].ISOCode)
	assert.Equal(t, 200.0, c.MaxValue)
	assert.Len(t, c.ColorBreaks, 4)

	empty := Choropleth(nil)
	assert.Empty(t, empty.Entries)
	assert.Empty(t, empty.ColorBreaks)
}

func TestJoinCoordinates(t *testing.T) {
	joined := JoinCoordinates(sampleOutbreak(), spatial.DefaultCoordinates())
	require.Len(t, joined, 4, "unmatched rows stay in the table")

	require.True(t, joined[0].HasCoordinates())
	assert.InDelta(t, 20.5937, *joined[0].Latitude, 1e-9)
	assert.InDelta(t, 78.9629, *joined[0].Longitude, 1e-9)
	assert.False(t, joined[3].HasCoordinates())

	again := JoinCoordinates(sampleOutbreak(), spatial.DefaultCoordinates())
	assert.Equal(t, joined, again)
}

func TestMapPoints(t *testing.T) {
	m := MapPoints(JoinCoordinates(sampleOutbreak(), spatial.DefaultCoordinates()))
	assert.Equal(t, 3, m.Count)
	assert.Equal(t, []string{"Philippines"}, m.Unmapped)
	require.NotNil(t, m.Viewport)
	assert.InDelta(t, 20.5937, m.Viewport.MinLat, 1e-9)
	assert.InDelta(t, 23.6850, m.Viewport.MaxLat, 1e-9)
	assert.Greater(t, m.Viewport.RadiusM, 0.0)

	empty := MapPoints(nil)
	assert.Equal(t, 0, empty.Count)
	assert.Nil(t, empty.Viewport)
}

func TestPivot(t *testing.T) {
	records := append(sampleOutbreak(), models.OutbreakRecord{Year: 2001, Country: "Bangladesh", Cases: 7})
	m := Pivot(records)

	assert.Equal(t, []string{"Bangladesh", "India", "Philippines"}, m.Countries)
	assert.Equal(t, []int{2001, 2018, 2019}, m.Years)

	assert.Equal(t, 10.0, m.Value("Bangladesh", 2001), "repeated pair holds the mean")
	assert.Equal(t, 19.0, m.Value("India", 2018))
	assert.Equal(t, 5.0, m.Value("India", 2019))
	assert.Equal(t, 0.0, m.Value("India", 2001), "absent pair is zero filled")
	assert.Equal(t, 0.0, m.Value("Bangladesh", 2019))

	require.Len(t, m.Cells, 9)
	for _, c := range m.Cells {
		assert.GreaterOrEqual(t, c.Intensity, 0.0)
		assert.LessOrEqual(t, c.Intensity, 1.0)
	}
	assert.Equal(t, 19.0, m.MaxValue)
	assert.Equal(t, 0.0, m.MinValue)
	assert.False(t, m.Cells[1].Present)
	assert.True(t, m.Cells[0].Present)
}

func TestPivot_ExactCounts(t *testing.T) {
	records := sampleOutbreak()
	m := Pivot(records)
	for _, r := range records {
		assert.Equal(t, r.Cases, m.Value(r.Country, r.Year))
	}
}

func TestFilterAndCountries(t *testing.T) {
	records := sampleOutbreak()
	assert.Len(t, FilterByCountry(records, "All"), 4)
	assert.Len(t, FilterByCountry(records, ""), 4)
	assert.Len(t, FilterByCountry(records, "India"), 2)
	assert.Empty(t, FilterByCountry(records, "Atlantis"))

	assert.Equal(t, []string{"Bangladesh", "India", "Philippines"}, Countries(records))
}

func TestOutbreakBars(t *testing.T) {
	bars := OutbreakBars(sampleOutbreak())
	require.Len(t, bars, 3)
	assert.Equal(t, 2001, bars[0].Year)
	assert.Equal(t, 5.0, bars[2].Value)
	assert.Equal(t, "2019", bars[2].Label)
}

func TestCaseBarsAndTrend(t *testing.T) {
	yearly := YearlyRollup(sampleTimeseries())
	bars := CaseBars(yearly)
	require.Len(t, bars, 2)
	assert.InDelta(t, 0.00005, bars[0].Value, 1e-12)

	trend := FatalityTrend(yearly)
	require.Len(t, trend, 2)
	assert.Equal(t, yearly[1].FatalityRate, trend[1].FatalityRate)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1.5K", FormatNumber(1500))
	assert.Equal(t, "2.3M", FormatNumber(2_345_678))
	assert.Equal(t, "7.0B", FormatNumber(7e9))
	assert.Equal(t, "0", FormatNumber(0))
}

func TestKPIs(t *testing.T) {
	agg := models.YearlyAggregate{Year: 2020, TotalCases: 2_000_000, TotalDeaths: f(40_000), FatalityRate: f(2)}
	k := KPIs(agg, sampleOutbreak())

	assert.Equal(t, 2020, k.Year)
	assert.Equal(t, "2.0M", k.TotalCases.Display)
	assert.Equal(t, "40.0K", k.TotalDeaths.Display)
	assert.Equal(t, "2.00", k.FatalityRate.Display)

	// mean of 89.47, 40 and 69.23; Philippines has no defined rate
	require.NotNil(t, k.AvgOutbreakFatality.Value)
	assert.InDelta(t, (17.0/19*100+40+9.0/13*100)/3, *k.AvgOutbreakFatality.Value, 1e-9)

	none := KPIs(models.YearlyAggregate{Year: 2020}, nil)
	assert.Equal(t, "n/a", none.TotalDeaths.Display)
	assert.Equal(t, "n/a", none.FatalityRate.Display)
	assert.Nil(t, none.AvgOutbreakFatality.Value)
}

func TestDistribution(t *testing.T) {
	slices := Distribution(models.YearlyAggregate{TotalCases: 100, TotalDeaths: f(25)})
	require.Len(t, slices, 2)
	assert.Equal(t, 75.0, slices[0].Value)
	assert.Equal(t, 25.0, slices[1].Value)
	assert.InDelta(t, 25.0, *slices[1].Percent, 1e-9)

	empty := Distribution(models.YearlyAggregate{})
	assert.Nil(t, empty[0].Percent)
}

func TestBuild(t *testing.T) {
	d, err := Build(sampleTimeseries(), sampleOutbreak(), spatial.DefaultCoordinates(), models.DashboardFilter{})
	require.NoError(t, err)

	assert.Equal(t, 2021, d.Filter.Year, "defaults to the latest year")
	assert.Equal(t, models.CountryAll, d.Filter.Country)
	assert.Equal(t, [2]int{2020, 2021}, d.YearRange)
	assert.Len(t, d.OutbreakRows, 4)
	assert.Len(t, d.LatestRows, 3)
	assert.Equal(t, 3, d.PointMap.Count)
	assert.Len(t, d.Heatmap.Countries, 3)
	assert.Len(t, d.Distribution, 2)

	d, err = Build(sampleTimeseries(), sampleOutbreak(), spatial.DefaultCoordinates(), models.DashboardFilter{Year: 2020, Country: "India"})
	require.NoError(t, err)
	assert.Len(t, d.OutbreakRows, 2)
	assert.Len(t, d.Heatmap.Countries, 3, "heatmap ignores the country filter")
	assert.Equal(t, 50.0, *d.KPIs.TotalCases.Value)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(nil, sampleOutbreak(), spatial.DefaultCoordinates(), models.DashboardFilter{})
	assert.ErrorIs(t, err, ErrNoTimeseriesData)

	_, err = Build(sampleTimeseries(), nil, spatial.DefaultCoordinates(), models.DashboardFilter{Year: 1999})
	assert.True(t, errors.Is(err, ErrYearNotFound))
	assert.Contains(t, err.Error(), "1999")
}
