package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat indicates no registered loader accepts the file.
var ErrUnsupportedFormat = errors.New("unsupported data file format")

// ErrNoRows is returned when cleaning leaves nothing to chart.
var ErrNoRows = errors.New("no rows left after cleaning")

// MissingColumnsError lists every required column absent from the input.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// TimeFormatError reports a time value that is not "hour:minute".
// Row is the zero-based row index in the filtered table.
type TimeFormatError struct {
	Row   int
	Value string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("row %d: invalid time %q (want HH:MM)", e.Row, e.Value)
}

// YearRangeError reports comparison years outside the data or out of order.
type YearRangeError struct {
	Start, End int
	Min, Max   int
}

func (e *YearRangeError) Error() string {
	switch {
	case e.Start > e.End:
		return fmt.Sprintf("compare start year %d is after end year %d", e.Start, e.End)
	case e.Start < e.Min:
		return fmt.Sprintf("compare start year %d is before first year in data (%d)", e.Start, e.Min)
	default:
		return fmt.Sprintf("compare end year %d is after last year in data (%d)", e.End, e.Max)
	}
}
