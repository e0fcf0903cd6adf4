package dataset

// Years is the pair of years compared side by side.
type Years struct {
	Start int
	End   int
}

// Contains reports whether y is one of the two compared years.
func (y Years) Contains(year int) bool { return year == y.Start || year == y.End }

// ResolveYears fills unset (zero) years with the data's min and max and
// rejects pairs outside that span or out of order.
func ResolveYears(f *Fatalities, start, end int) (Years, error) {
	lo, hi := f.MinYear(), f.MaxYear()
	if start == 0 {
		start = lo
	}
	if end == 0 {
		end = hi
	}
	if start < lo || end > hi || start > end {
		return Years{}, &YearRangeError{Start: start, End: end, Min: lo, Max: hi}
	}
	return Years{Start: start, End: end}, nil
}
