package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// Summary is a markdown-friendly description of a cleaned table.
type Summary struct {
	Name      string
	Rows      int
	FirstYear int
	LastYear  int
	Cols      []ColumnSummary
	Years     []Count
}

// ColumnSummary captures the inferred kind and statistics of one column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|boolean|categorical
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Categorical top values
	TopValues []Count
}

const topValues = 5

// Summarize describes every column of df. name labels the report.
func Summarize(df dataframe.DataFrame, name string) *Summary {
	s := &Summary{Name: name, Rows: df.Nrow()}
	for _, col := range df.Names() {
		s.Cols = append(s.Cols, summarizeColumn(df, col))
	}
	if has(df.Names(), "year") && df.Nrow() > 0 {
		s.Years = CountBy(df, "year")
		s.FirstYear, _ = strconv.Atoi(s.Years[0].Key)
		s.LastYear, _ = strconv.Atoi(s.Years[len(s.Years)-1].Key)
	}
	return s
}

func summarizeColumn(df dataframe.DataFrame, col string) ColumnSummary {
	c := ColumnSummary{Name: col}
	ser := df.Col(col)
	recs := ser.Records()
	nan := ser.IsNaN()

	var nums []float64
	isBool := true
	cats := map[string]int{}
	for i, r := range recs {
		if nan[i] {
			c.Missing++
			continue
		}
		c.NonNull++
		cats[r]++
		if r != "true" && r != "false" {
			isBool = false
		}
		if v, err := strconv.ParseFloat(r, 64); err == nil {
			nums = append(nums, v)
		}
	}
	c.Unique = len(cats)

	switch {
	case c.NonNull > 0 && isBool:
		c.Kind = "boolean"
		c.TopValues = top(cats, 2)
	case c.NonNull > 0 && len(nums) == c.NonNull:
		c.Kind = "numeric"
		c.Min, c.Max, c.Mean, c.Std = describe(nums)
	default:
		c.Kind = "categorical"
		c.TopValues = top(cats, topValues)
	}
	return c
}

func describe(vals []float64) (lo, hi, mean, std float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	var sum float64
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	mean = sum / float64(len(vals))
	if len(vals) > 1 {
		var sq float64
		for _, v := range vals {
			sq += (v - mean) * (v - mean)
		}
		std = math.Sqrt(sq / float64(len(vals)-1))
	}
	return lo, hi, mean, std
}

func top(cats map[string]int, n int) []Count {
	out := make([]Count, 0, len(cats))
	for k, v := range cats {
		out = append(out, Count{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value == out[j].Value {
			return out[i].Key < out[j].Key
		}
		return out[i].Value > out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Markdown renders a compact report for the terminal or a standalone doc.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.Rows))
	if len(s.Years) > 0 {
		b.WriteString(fmt.Sprintf("Years: %d-%d\n", s.FirstYear, s.LastYear))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(s.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range s.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf(": min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
		case "categorical", "boolean":
			if len(c.TopValues) > 0 {
				b.WriteString(": top ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Key), kv.Value))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(s.Years) > 0 {
		b.WriteString("\n[FATALITIES BY YEAR]\n")
		b.WriteString("| year | fatalities |\n| --- | --- |\n")
		for _, y := range s.Years {
			b.WriteString(fmt.Sprintf("| %s | %d |\n", y.Key, y.Value))
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

func has(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
