package analysis

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func frame() dataframe.DataFrame {
	return dataframe.New(
		series.New([]int{2010, 2010, 2011, 2012, 2012, 2012}, series.Int, "year"),
		series.New([]string{"NSW", "VIC", "NSW", "QLD", "NSW", "VIC"}, series.String, "state"),
		series.New([]int{9, 10, 23, 4, 10, 9}, series.Int, "hour"),
		series.New([]string{"Friday", "Monday", "Sunday", "Monday", "Tuesday", "Friday"}, series.String, "dayweek"),
		series.New([]int{17, 25, 81, 40, 33, 0}, series.Int, "age"),
		series.New([]bool{true, false, false, true, false, false}, series.Bool, "involvement"),
	)
}

func TestCountByOrdersNumericKeys(t *testing.T) {
	got := CountBy(frame(), "hour")
	assert.Equal(t, []Count{{"4", 1}, {"9", 2}, {"10", 2}, {"23", 1}}, got)

	got = CountBy(frame(), "state")
	assert.Equal(t, []Count{{"NSW", 3}, {"QLD", 1}, {"VIC", 2}}, got)
}

func TestCountByPairZeroFills(t *testing.T) {
	pairs := CountByPair(frame(), "state", "year")
	assert.Equal(t, []string{"2010", "2011", "2012"}, Hues(pairs))
	assert.Equal(t, []Count{{"NSW", 1}, {"QLD", 0}, {"VIC", 1}}, pairs["2010"])
	assert.Equal(t, []Count{{"NSW", 1}, {"QLD", 0}, {"VIC", 0}}, pairs["2011"])
	assert.Equal(t, []Count{{"NSW", 3}, {"QLD", 1}, {"VIC", 2}}, Totals(pairs))
}

func TestFilterYearsKeepsOnlySelected(t *testing.T) {
	df := FilterYears(frame(), 2010, 2012)
	require.NoError(t, df.Err)
	assert.Equal(t, 5, df.Nrow())
	for _, y := range Ints(df, "year") {
		assert.True(t, y == 2010 || y == 2012, "unexpected year %d", y)
	}
}

func TestBins(t *testing.T) {
	bins := Bins([]int{0, 9, 10, 25, 81}, 10)
	require.Len(t, bins, 9)
	assert.Equal(t, Bin{Min: 0, Max: 10, Count: 2}, bins[0])
	assert.Equal(t, Bin{Min: 10, Max: 20, Count: 1}, bins[1])
	assert.Equal(t, Bin{Min: 80, Max: 90, Count: 1}, bins[8])
	assert.Nil(t, Bins(nil, 10))
	assert.Nil(t, Bins([]int{1}, 0))
}

func TestSortHelpers(t *testing.T) {
	byVal := SortByValue([]Count{{"VIC", 2}, {"NSW", 3}, {"QLD", 1}, {"ACT", 2}})
	assert.Equal(t, []string{"QLD", "ACT", "VIC", "NSW"}, Keys(byVal))

	days := SortWeekdays(CountBy(frame(), "dayweek"))
	assert.Equal(t, []string{"Monday", "Tuesday", "Friday", "Sunday"}, Keys(days))
	assert.Equal(t, []float64{2, 1, 2, 1}, Values(days))

	odd := SortWeekdays([]Count{{"Weekend", 1}, {"Sunday", 1}, {"Holiday", 1}})
	assert.Equal(t, []string{"Sunday", "Holiday", "Weekend"}, Keys(odd))
}

func TestSummaryMarkdown(t *testing.T) {
	s := Summarize(frame(), "traffic.csv")
	assert.Equal(t, 6, s.Rows)
	assert.Equal(t, 2010, s.FirstYear)
	assert.Equal(t, 2012, s.LastYear)

	md := s.Markdown()
	assert.True(t, strings.HasPrefix(md, "[DATASET SUMMARY]\n"))
	assert.Contains(t, md, "File: traffic.csv")
	assert.Contains(t, md, "Years: 2010-2012")
	assert.Contains(t, md, "- age: numeric (non-null 6, missing 0.0%): min 0, max 81")
	assert.Contains(t, md, "- state: categorical")
	assert.Contains(t, md, "NSW(3)")
	assert.Contains(t, md, "- involvement: boolean")
	assert.Contains(t, md, "| 2012 | 3 |")
}

func TestWriteWorkbook(t *testing.T) {
	p := filepath.Join(t.TempDir(), "summary.xlsx")
	sheets := []Sheet{
		CountsSheet("state", "state", CountBy(frame(), "state")),
		CountsSheet("fatalities_by_crash_type_compare", "crash_type", []Count{{"Single", 4}}),
	}
	require.NoError(t, WriteWorkbook(p, sheets))

	f, err := excelize.OpenFile(p)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"state", "fatalities_by_crash_type_compar"}, f.GetSheetList())
	rows, err := f.GetRows("state")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"state", "fatalities"}, {"NSW", "3"}, {"QLD", "1"}, {"VIC", "2"}}, rows)

	require.Error(t, WriteWorkbook(p, nil))
}
