package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// table is a CSV upload restricted to a fixed set of required columns
type table struct {
	name    string
	index   map[string]int // required column -> position in the file
	records [][]string
}

// readTable reads a whole CSV upload and resolves the required columns.
// Column names match case-insensitively after trimming.
func readTable(name string, r io.Reader, required []string) (*table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", name, ErrEmptyDataset)
		}
		return nil, fmt.Errorf("read %s header: %w", name, err)
	}

	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	t := &table{name: name, index: make(map[string]int, len(required))}
	var missing []string
	for _, col := range required {
		pos, ok := positions[strings.ToLower(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		t.index[col] = pos
	}
	if len(missing) > 0 {
		return nil, &MalformedDatasetError{Dataset: name, Missing: missing}
	}

	t.records, err = cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s rows: %w", name, err)
	}
	return t, nil
}

// cell returns the trimmed value of a required column, or "" for short rows
func (t *table) cell(rec []string, col string) string {
	pos := t.index[col]
	if pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

// sniffDelimiter picks the most frequent of ',', ';' and tab in the header line
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// parseNumber parses a numeric cell. Empty, "NaN" and infinite values are
// reported as missing.
func parseNumber(s string) (float64, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, nil
	}
	return v, true, nil
}

// Accepted year range
const (
	minYear = 1
	maxYear = 9999
)

// parseYear accepts integral values written as "2019" or "2019.0"
// within minYear..maxYear
func parseYear(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("year %v is not a whole number", f)
	}
	if f < minYear || f > maxYear {
		return 0, fmt.Errorf("year %v is outside %d-%d", f, minYear, maxYear)
	}
	return int(f), nil
}

var dateLayouts = []string{
	"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006/01/02", "01/02/2006",
}

func parseDate(s string) (time.Time, error) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}
