package models

import "time"

// TimeseriesRecord is one row of the pandemic time series (OWID layout)
type TimeseriesRecord struct {
	ISOCode     string    `json:"iso_code"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	TotalCases  float64   `json:"total_cases"`            // Cumulative
	TotalDeaths *float64  `json:"total_deaths,omitempty"` // Cumulative, nil when the source cell is empty
	Population  *float64  `json:"population,omitempty"`
}

// Year returns the calendar year of the observation
func (r TimeseriesRecord) Year() int {
	return r.Date.Year()
}

// OutbreakRecord is one row of the outbreak dataset
type OutbreakRecord struct {
	Year         int      `json:"year"`
	Country      string   `json:"country"`
	Cases        float64  `json:"cases"`
	Deaths       float64  `json:"deaths"`
	FatalityRate *float64 `json:"fatality_rate"`       // Percent, nil when cases is zero
	Latitude     *float64 `json:"latitude,omitempty"`  // Filled by the coordinate join
	Longitude    *float64 `json:"longitude,omitempty"` // Filled by the coordinate join
}

// HasCoordinates reports whether the coordinate join matched this row
func (r OutbreakRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}
