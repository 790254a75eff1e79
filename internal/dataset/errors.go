package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDataset is returned when an upload has no header row
var ErrEmptyDataset = errors.New("dataset is empty")

// MalformedDatasetError reports required columns missing from an upload
type MalformedDatasetError struct {
	Dataset string
	Missing []string
}

func (e *MalformedDatasetError) Error() string {
	return fmt.Sprintf("malformed dataset %q: missing required columns: %s",
		e.Dataset, strings.Join(e.Missing, ", "))
}

// CellError reports a value that could not be parsed
type CellError struct {
	Dataset string
	Row     int // 1-based, header is row 1
	Column  string
	Value   string
	Err     error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("%s row %d column %s: invalid value %q: %v", e.Dataset, e.Row, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}
