package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Column names the cleaner reads or derives.
const (
	ColYear        = "year"
	ColTime        = "time"
	ColRoadUser    = "road_user"
	ColHour        = "hour"
	ColMinute      = "minute"
	ColInvolvement = "involvement"

	// OtherRoadUser replaces road_user values outside the allow-list.
	OtherRoadUser = "Other"
)

// Rules parameterise Clean.
type Rules struct {
	// Rows with year <= StartingYear are dropped.
	StartingYear       int
	PrimaryRoadUsers   []string
	InvolvementColumns []string
}

// DefaultRules mirrors the published dataset layout.
func DefaultRules() Rules {
	return Rules{
		StartingYear:       2006,
		PrimaryRoadUsers:   []string{"Driver", "Passenger", "Motorcycle rider", "Pedestrian"},
		InvolvementColumns: []string{"bus_involvement", "rigid_truck_involvement", "articulated_truck_involvement"},
	}
}

// Required returns the columns Clean cannot work without.
func (r Rules) Required() []string {
	out := []string{ColYear, ColTime, ColRoadUser}
	return append(out, r.InvolvementColumns...)
}

// Fatalities is a cleaned table. It is read-only once built.
type Fatalities struct {
	df    dataframe.DataFrame
	years []int
}

// Frame returns the cleaned dataframe.
func (f *Fatalities) Frame() dataframe.DataFrame { return f.df }

// Rows returns the number of cleaned rows.
func (f *Fatalities) Rows() int { return f.df.Nrow() }

// Years returns the distinct years present, ascending.
func (f *Fatalities) Years() []int { return append([]int(nil), f.years...) }

// MinYear returns the earliest year in the cleaned data.
func (f *Fatalities) MinYear() int { return f.years[0] }

// MaxYear returns the latest year in the cleaned data.
func (f *Fatalities) MaxYear() int { return f.years[len(f.years)-1] }

// Clean filters the raw table and derives hour, minute, a normalised
// road_user and the involvement flag. The input frame is left untouched.
func Clean(df dataframe.DataFrame, rules Rules) (*Fatalities, error) {
	if err := requireColumns(df, rules.Required()); err != nil {
		return nil, err
	}

	threshold := rules.StartingYear
	out := df.Filter(dataframe.F{
		Colname:    ColYear,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool {
			if el.IsNA() {
				return false
			}
			y, err := el.Int()
			return err == nil && y > threshold
		},
	})
	if out.Err != nil {
		return nil, fmt.Errorf("filter years: %w", out.Err)
	}

	out, err := dropMissing(out)
	if err != nil {
		return nil, err
	}
	if out.Nrow() == 0 {
		return nil, ErrNoRows
	}

	hours, minutes, err := splitTimes(out.Col(ColTime).Records())
	if err != nil {
		return nil, err
	}
	users := normaliseRoadUsers(out.Col(ColRoadUser).Records(), rules.PrimaryRoadUsers)
	involved := involvement(out, rules.InvolvementColumns)

	out = out.Mutate(series.New(hours, series.Int, ColHour)).
		Mutate(series.New(minutes, series.Int, ColMinute)).
		Mutate(series.New(users, series.String, ColRoadUser)).
		Mutate(series.New(involved, series.Bool, ColInvolvement))
	if out.Err != nil {
		return nil, fmt.Errorf("derive columns: %w", out.Err)
	}

	years, err := distinctYears(out)
	if err != nil {
		return nil, err
	}
	return &Fatalities{df: out, years: years}, nil
}

func dropMissing(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	n := df.Nrow()
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	for _, name := range df.Names() {
		for i, na := range df.Col(name).IsNaN() {
			if na {
				keep[i] = false
			}
		}
	}
	idx := make([]int, 0, n)
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	if len(idx) == n {
		return df, nil
	}
	if len(idx) == 0 {
		return dataframe.DataFrame{}, ErrNoRows
	}
	out := df.Subset(idx)
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("drop missing: %w", out.Err)
	}
	return out, nil
}

func splitTimes(values []string) ([]int, []int, error) {
	hours := make([]int, len(values))
	minutes := make([]int, len(values))
	for i, v := range values {
		hs, ms, ok := strings.Cut(strings.TrimSpace(v), ":")
		if !ok {
			return nil, nil, &TimeFormatError{Row: i, Value: v}
		}
		// seconds, when present, are ignored
		ms, _, _ = strings.Cut(ms, ":")
		h, err := strconv.Atoi(hs)
		if err != nil {
			return nil, nil, &TimeFormatError{Row: i, Value: v}
		}
		m, err := strconv.Atoi(ms)
		if err != nil {
			return nil, nil, &TimeFormatError{Row: i, Value: v}
		}
		hours[i], minutes[i] = h, m
	}
	return hours, minutes, nil
}

func normaliseRoadUsers(values, allowed []string) []string {
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}
	out := make([]string, len(values))
	for i, v := range values {
		if ok[v] {
			out[i] = v
		} else {
			out[i] = OtherRoadUser
		}
	}
	return out
}

func involvement(df dataframe.DataFrame, cols []string) []bool {
	out := make([]bool, df.Nrow())
	for _, c := range cols {
		for i, v := range df.Col(c).Records() {
			if strings.EqualFold(strings.TrimSpace(v), "yes") {
				out[i] = true
			}
		}
	}
	return out
}

func distinctYears(df dataframe.DataFrame) ([]int, error) {
	ys, err := df.Col(ColYear).Int()
	if err != nil {
		return nil, fmt.Errorf("read years: %w", err)
	}
	seen := map[int]bool{}
	var out []int
	for _, y := range ys {
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out, nil
}
