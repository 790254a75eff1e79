package models

// YearlyAggregate is the per-year rollup of the pandemic time series
type YearlyAggregate struct {
	Year         int      `json:"year"`
	TotalCases   float64  `json:"total_cases"`   // Max of cumulative cases within the year
	TotalDeaths  *float64 `json:"total_deaths"`  // Max of cumulative deaths, nil when no row reports deaths
	FatalityRate *float64 `json:"fatality_rate"` // Percent, nil when undefined
}

// LocationSnapshot is the latest observation of one location
type LocationSnapshot struct {
	ISOCode     string   `json:"iso_code"`
	Location    string   `json:"location"`
	Date        string   `json:"date"` // YYYY-MM-DD
	TotalCases  float64  `json:"total_cases"`
	TotalDeaths *float64 `json:"total_deaths"`
	Population  *float64 `json:"population"`
	Aggregate   bool     `json:"aggregate"` // OWID_* regional or income-group rows
}

// MapPoint is an outbreak location for the point map
type MapPoint struct {
	Country string  `json:"country"`
	Year    int     `json:"year"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Cases   float64 `json:"cases"`
}

// MapViewport describes the extent of a set of map points
type MapViewport struct {
	CenterLat float64 `json:"center_lat"`
	CenterLon float64 `json:"center_lon"`
	MinLat    float64 `json:"min_lat"`
	MaxLat    float64 `json:"max_lat"`
	MinLon    float64 `json:"min_lon"`
	MaxLon    float64 `json:"max_lon"`
	RadiusM   float64 `json:"radius_m"` // Farthest point from the center, meters
}

// PointMap is the outbreak point map view
type PointMap struct {
	Points   []MapPoint   `json:"points"`
	Count    int          `json:"count"`
	Viewport *MapViewport `json:"viewport,omitempty"`
	Unmapped []string     `json:"unmapped"` // Countries without coordinates
}

// ChoroplethEntry is one shaded region of the choropleth
type ChoroplethEntry struct {
	ISOCode    string  `json:"iso_code"`
	Location   string  `json:"location"`
	TotalCases float64 `json:"total_cases"`
}

// Choropleth is the pandemic choropleth view
type Choropleth struct {
	Entries     []ChoroplethEntry `json:"entries"`
	ColorBreaks []float64         `json:"color_breaks"` // Quintile boundaries of total cases
	MaxValue    float64           `json:"max_value"`
}

// KPI is a scalar indicator card
type KPI struct {
	Label   string   `json:"label"`
	Value   *float64 `json:"value"`
	Display string   `json:"display"`
}

// KPISet holds the four indicator cards
type KPISet struct {
	Year                int `json:"year"`
	TotalCases          KPI `json:"total_cases"`
	TotalDeaths         KPI `json:"total_deaths"`
	FatalityRate        KPI `json:"fatality_rate"`
	AvgOutbreakFatality KPI `json:"avg_outbreak_fatality"`
}

// Slice is a pie chart slice
type Slice struct {
	Label   string   `json:"label"`
	Value   float64  `json:"value"`
	Percent *float64 `json:"percent"`
}

// Bar is a single bar of a bar chart
type Bar struct {
	Label string  `json:"label"`
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// TrendPoint is a point of the fatality rate line chart
type TrendPoint struct {
	Year         int      `json:"year"`
	FatalityRate *float64 `json:"fatality_rate"`
}

// Dashboard bundles every derived view of one rendering pass
type Dashboard struct {
	Filter        DashboardFilter    `json:"filter"`
	YearRange     [2]int             `json:"year_range"`
	Countries     []string           `json:"countries"`
	KPIs          KPISet             `json:"kpis"`
	Yearly        []YearlyAggregate  `json:"yearly"`
	FatalityTrend []TrendPoint       `json:"fatality_trend"`
	CovidCaseBars []Bar              `json:"covid_case_bars"` // Millions
	OutbreakBars  []Bar              `json:"outbreak_case_bars"`
	Distribution  []Slice            `json:"distribution"`
	Heatmap       HeatmapMatrix      `json:"heatmap"`
	Choropleth    Choropleth         `json:"choropleth"`
	PointMap      PointMap           `json:"point_map"`
	OutbreakRows  []OutbreakRecord   `json:"outbreak_rows"`
	LatestRows    []LocationSnapshot `json:"latest_rows"`
}
