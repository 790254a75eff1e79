package dataset

import (
	"fmt"
	"io"

	"github.com/jengzang/epidash-backend-go/internal/models"
)

// Outbreak column names
const (
	ColYear    = "Year"
	ColCountry = "Country"
	ColCases   = "Cases"
	ColDeaths  = "Deaths"
)

// OutbreakColumns lists the columns an outbreak upload must carry
var OutbreakColumns = []string{ColYear, ColCountry, ColCases, ColDeaths}

// OutbreakTable is a parsed outbreak upload
type OutbreakTable struct {
	Records     []models.OutbreakRecord
	RowsRead    int
	RowsDropped int // Rows without Year or Country
	Warnings    []string
}

// ParseOutbreak reads an outbreak CSV. Rows missing Year or Country are
// dropped; empty case or death counts are read as zero with a warning.
func ParseOutbreak(r io.Reader) (*OutbreakTable, error) {
	const name = "outbreak"

	t, err := readTable(name, r, OutbreakColumns)
	if err != nil {
		return nil, err
	}

	out := &OutbreakTable{
		Records:  make([]models.OutbreakRecord, 0, len(t.records)),
		RowsRead: len(t.records),
	}
	for i, rec := range t.records {
		row := i + 2

		yearRaw := t.cell(rec, ColYear)
		country := t.cell(rec, ColCountry)
		if yearRaw == "" || country == "" {
			out.RowsDropped++
			continue
		}
		year, err := parseYear(yearRaw)
		if err != nil {
			return nil, &CellError{Dataset: name, Row: row, Column: ColYear, Value: yearRaw, Err: err}
		}

		record := models.OutbreakRecord{Year: year, Country: country}
		for _, col := range []string{ColCases, ColDeaths} {
			raw := t.cell(rec, col)
			v, ok, err := parseNumber(raw)
			if err != nil {
				return nil, &CellError{Dataset: name, Row: row, Column: col, Value: raw, Err: err}
			}
			if !ok {
				out.Warnings = append(out.Warnings, fmt.Sprintf("row %d: empty %s, read as 0", row, col))
			}
			if col == ColCases {
				record.Cases = v
			} else {
				record.Deaths = v
			}
		}
		if record.Deaths > record.Cases {
			out.Warnings = append(out.Warnings, fmt.Sprintf("row %d: %s %d reports more deaths than cases", row, country, year))
		}

		out.Records = append(out.Records, record)
	}

	return out, nil
}
