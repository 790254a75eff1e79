package models

// CountryAll selects every outbreak country
const CountryAll = "All"

// DashboardFilter represents the interactive selections of a rendering pass
type DashboardFilter struct {
	Year    int    `form:"year" json:"year"`       // Pandemic year, 0 selects the latest year
	Country string `form:"country" json:"country"` // Outbreak country, empty or "All" selects every country
}

// AllCountries reports whether the filter keeps every outbreak country
func (f DashboardFilter) AllCountries() bool {
	return f.Country == "" || f.Country == CountryAll
}

// RowFilter represents paging parameters for the raw data tables
type RowFilter struct {
	Country  string `form:"country"`  // Outbreak rows only
	Location string `form:"location"` // Timeseries rows only
	Year     int    `form:"year"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// Normalize applies default paging values
func (f *RowFilter) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 100
	}
	if f.PageSize > 1000 {
		f.PageSize = 1000
	}
	if f.Country == CountryAll {
		f.Country = ""
	}
}

// Offset returns the SQL offset for the current page
func (f RowFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
