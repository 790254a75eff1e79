package dataset

import (
	"fmt"
	"io"

	"github.com/jengzang/epidash-backend-go/internal/models"
)

// Timeseries column names as published in the OWID COVID-19 dataset
const (
	ColISOCode     = "iso_code"
	ColLocation    = "location"
	ColDate        = "date"
	ColTotalCases  = "total_cases"
	ColTotalDeaths = "total_deaths"
	ColPopulation  = "population"
)

// TimeseriesColumns lists the columns a timeseries upload must carry
var TimeseriesColumns = []string{ColISOCode, ColLocation, ColDate, ColTotalCases, ColTotalDeaths, ColPopulation}

// TimeseriesTable is a parsed and cleaned pandemic timeseries upload
type TimeseriesTable struct {
	Records     []models.TimeseriesRecord
	RowsRead    int
	RowsDropped int // Rows without iso_code or total_cases
	Warnings    []string
}

// ParseTimeseries reads a pandemic timeseries CSV, keeps the required columns
// and drops rows missing an identifier or a case count.
func ParseTimeseries(r io.Reader) (*TimeseriesTable, error) {
	const name = "timeseries"

	t, err := readTable(name, r, TimeseriesColumns)
	if err != nil {
		return nil, err
	}

	out := &TimeseriesTable{
		Records:  make([]models.TimeseriesRecord, 0, len(t.records)),
		RowsRead: len(t.records),
	}
	for i, rec := range t.records {
		row := i + 2

		iso := t.cell(rec, ColISOCode)
		casesRaw := t.cell(rec, ColTotalCases)
		cases, ok, err := parseNumber(casesRaw)
		if err != nil {
			return nil, &CellError{Dataset: name, Row: row, Column: ColTotalCases, Value: casesRaw, Err: err}
		}
		if iso == "" || !ok {
			out.RowsDropped++
			continue
		}

		dateRaw := t.cell(rec, ColDate)
		date, err := parseDate(dateRaw)
		if err != nil {
			return nil, &CellError{Dataset: name, Row: row, Column: ColDate, Value: dateRaw, Err: err}
		}

		record := models.TimeseriesRecord{
			ISOCode:    iso,
			Location:   t.cell(rec, ColLocation),
			Date:       date,
			TotalCases: cases,
		}
		if record.Location == "" {
			record.Location = iso
			out.Warnings = append(out.Warnings, fmt.Sprintf("row %d: empty location, using iso_code %s", row, iso))
		}

		for _, col := range []string{ColTotalDeaths, ColPopulation} {
			raw := t.cell(rec, col)
			v, ok, err := parseNumber(raw)
			if err != nil {
				return nil, &CellError{Dataset: name, Row: row, Column: col, Value: raw, Err: err}
			}
			if !ok {
				continue
			}
			if col == ColTotalDeaths {
				record.TotalDeaths = &v
			} else {
				record.Population = &v
			}
		}

		out.Records = append(out.Records, record)
	}

	return out, nil
}
