package analysis

import (
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Count is the number of rows sharing one key.
type Count struct {
	Key   string
	Value int
}

// Bin is a half-open histogram bucket [Min, Max).
type Bin struct {
	Min, Max int
	Count    int
}

// Weekdays in display order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// CountBy counts rows per distinct value of col. Keys are ordered
// numerically when every key is an integer, lexically otherwise.
func CountBy(df dataframe.DataFrame, col string) []Count {
	counts := map[string]int{}
	for _, v := range df.Col(col).Records() {
		counts[v]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sortKeys(keys)
	out := make([]Count, len(keys))
	for i, k := range keys {
		out[i] = Count{Key: k, Value: counts[k]}
	}
	return out
}

// CountByPair counts rows per (col, hue) pair. Every hue gets one entry per
// distinct col value, in CountBy order, zero-filled where the pair is absent.
func CountByPair(df dataframe.DataFrame, col, hue string) map[string][]Count {
	keys := df.Col(col).Records()
	hues := df.Col(hue).Records()
	pairs := map[string]map[string]int{}
	seen := map[string]bool{}
	for i := range keys {
		if pairs[hues[i]] == nil {
			pairs[hues[i]] = map[string]int{}
		}
		pairs[hues[i]][keys[i]]++
		seen[keys[i]] = true
	}
	all := make([]string, 0, len(seen))
	for k := range seen {
		all = append(all, k)
	}
	sortKeys(all)
	out := make(map[string][]Count, len(pairs))
	for h, m := range pairs {
		row := make([]Count, len(all))
		for i, k := range all {
			row[i] = Count{Key: k, Value: m[k]}
		}
		out[h] = row
	}
	return out
}

// Hues returns the keys of a CountByPair result in CountBy order.
func Hues(pairs map[string][]Count) []string {
	out := make([]string, 0, len(pairs))
	for h := range pairs {
		out = append(out, h)
	}
	sortKeys(out)
	return out
}

// Totals sums a CountByPair result across hues.
func Totals(pairs map[string][]Count) []Count {
	var out []Count
	for _, h := range Hues(pairs) {
		for i, c := range pairs[h] {
			if i >= len(out) {
				out = append(out, Count{Key: c.Key})
			}
			out[i].Value += c.Value
		}
	}
	return out
}

// FilterYears keeps rows whose year is one of years.
func FilterYears(df dataframe.DataFrame, years ...int) dataframe.DataFrame {
	want := make(map[int]bool, len(years))
	for _, y := range years {
		want[y] = true
	}
	return df.Filter(dataframe.F{
		Colname:    "year",
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool {
			y, err := el.Int()
			return err == nil && want[y]
		},
	})
}

// Ints returns an integer column, skipping values that do not parse.
func Ints(df dataframe.DataFrame, col string) []int {
	recs := df.Col(col).Records()
	out := make([]int, 0, len(recs))
	for _, r := range recs {
		if v, err := strconv.Atoi(r); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// Bins buckets values into [0, step), [step, 2*step) and so on, up to and
// including the bucket holding the largest value. Negative values are ignored.
func Bins(values []int, step int) []Bin {
	if len(values) == 0 || step <= 0 {
		return nil
	}
	hi := 0
	for _, v := range values {
		if v > hi {
			hi = v
		}
	}
	n := hi/step + 1
	out := make([]Bin, n)
	for i := range out {
		out[i] = Bin{Min: i * step, Max: (i + 1) * step}
	}
	for _, v := range values {
		if v < 0 {
			continue
		}
		out[v/step].Count++
	}
	return out
}

// SortByValue returns counts ordered by ascending value, ties by key.
func SortByValue(counts []Count) []Count {
	out := append([]Count(nil), counts...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value == out[j].Value {
			return out[i].Key < out[j].Key
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// SortWeekdays orders counts Monday through Sunday. Unknown keys follow, lexically.
func SortWeekdays(counts []Count) []Count {
	rank := make(map[string]int, len(Weekdays))
	for i, d := range Weekdays {
		rank[d] = i
	}
	out := append([]Count(nil), counts...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i].Key]
		rj, jok := rank[out[j].Key]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return out[i].Key < out[j].Key
		}
	})
	return out
}

// Keys and Values split counts into parallel slices.
func Keys(counts []Count) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Key
	}
	return out
}

func Values(counts []Count) []float64 {
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = float64(c.Value)
	}
	return out
}

func sortKeys(keys []string) {
	numeric := true
	for _, k := range keys {
		if _, err := strconv.Atoi(k); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})
		return
	}
	sort.Strings(keys)
}
