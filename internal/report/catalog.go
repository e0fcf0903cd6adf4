package report

import (
	"fmt"
	"image"
	"strconv"

	"github.com/KaramelBytes/roadstats-cli/internal/analysis"
	"github.com/KaramelBytes/roadstats-cli/internal/chart"
)

const yLabel = "Road Fatalities"

// pieFields are drawn as pies, two side by side when compared.
var pieFields = []string{"gender", "road_user", "crash_type"}

// Catalog returns every chart the site links to, in output order.
func Catalog() *Registry {
	r := NewRegistry()

	r.MustRegister(Descriptor{
		Name: BaseName("year"), Title: "Fatalities by year", Field: "year", Kind: KindBase,
		Render: renderYear, Table: baseTable("year"),
	})
	r.MustRegister(Descriptor{
		Name: CompareName("year"), Title: "Fatalities in the compared years", Field: "year", Kind: KindCompare,
		Render: renderYearCompare, Table: yearCompareTable,
	})
	r.MustRegister(Descriptor{
		Name: BaseName("state"), Title: "Fatalities by state", Field: "state", Kind: KindBase,
		Render: barRenderer("state", "State", true), Table: baseTable("state"),
	})
	r.MustRegister(Descriptor{
		Name: CompareName("state"), Title: "Fatalities by state, compared", Field: "state", Kind: KindCompare,
		Render: groupedRenderer("state", "State", true), Table: compareTable("state"),
	})
	r.MustRegister(Descriptor{
		Name: BaseName("hour"), Title: "Fatalities by hour", Field: "hour", Kind: KindBase,
		Render: barRenderer("hour", "Hour", false), Table: baseTable("hour"),
	})
	r.MustRegister(Descriptor{
		Name: CompareName("hour"), Title: "Fatalities by hour, compared", Field: "hour", Kind: KindCompare,
		Render: groupedRenderer("hour", "Hour", true), Table: compareTable("hour"),
	})
	for _, f := range pieFields {
		r.MustRegister(Descriptor{
			Name: BaseName(f), Title: "Fatalities by " + label(f), Field: f, Kind: KindBase,
			Render: pieRenderer(f), Table: baseTable(f),
		})
		r.MustRegister(Descriptor{
			Name: CompareName(f), Title: "Fatalities by " + label(f) + ", compared", Field: f, Kind: KindCompare,
			Render: pieCompareRenderer(f), Table: compareTable(f),
		})
	}
	r.MustRegister(Descriptor{
		Name: BaseName("age"), Title: "Fatalities by age", Field: "age", Kind: KindBase,
		Render: histRenderer("age", "Age"), Table: binTable("age"),
	})
	r.MustRegister(Descriptor{
		Name: CompareName("age"), Title: "Fatalities by age, compared", Field: "age", Kind: KindCompare,
		Render: histCompareRenderer("age", "Age"), Table: compareTable("age"),
	})
	r.MustRegister(Descriptor{
		Name: BaseName("speed_limit"), Title: "Fatalities by speed limit", Field: "speed_limit", Kind: KindBase,
		Render: histRenderer("speed_limit", "Speed limit"), Table: binTable("speed_limit"),
	})
	r.MustRegister(Descriptor{
		Name: CompareName("speed_limit"), Title: "Fatalities by speed limit, compared", Field: "speed_limit", Kind: KindCompare,
		Render: renderSpeedCompare, Table: compareTable("speed_limit"),
	})
	r.MustRegister(Descriptor{
		Name: BaseName("dayweek"), Title: "Fatalities by day of week", Field: "dayweek", Kind: KindBase,
		Render: pieRenderer("dayweek"), Table: baseTable("dayweek"),
	})
	r.MustRegister(Descriptor{
		Name: CompareName("dayweek"), Title: "Fatalities by day of week, compared", Field: "dayweek", Kind: KindCompare,
		Render: pieCompareRenderer("dayweek"), Table: compareTable("dayweek"),
	})
	return r
}

func label(field string) string {
	switch field {
	case "road_user":
		return "road user"
	case "crash_type":
		return "crash type"
	case "speed_limit":
		return "speed limit"
	case "dayweek":
		return "day of week"
	}
	return field
}

// order applies the display order a field's chart uses.
func order(field string, counts []analysis.Count) []analysis.Count {
	switch field {
	case "state":
		return analysis.SortByValue(counts)
	case "dayweek":
		return analysis.SortWeekdays(counts)
	}
	return counts
}

func baseCounts(c *Context, field string) []analysis.Count {
	return order(field, analysis.CountBy(c.Frame(), field))
}

// comparison is a per-label count for each compared year.
type comparison struct {
	Labels     []string
	Start, End []float64
}

func compareCounts(c *Context, field string) comparison {
	pairs := analysis.CountByPair(c.Compare(), field, "year")
	labels := analysis.Keys(order(field, analysis.Totals(pairs)))
	pick := func(year int) []float64 {
		byKey := map[string]int{}
		for _, cnt := range pairs[strconv.Itoa(year)] {
			byKey[cnt.Key] = cnt.Value
		}
		out := make([]float64, len(labels))
		for i, l := range labels {
			out[i] = float64(byKey[l])
		}
		return out
	}
	return comparison{Labels: labels, Start: pick(c.Years.Start), End: pick(c.Years.End)}
}

func counts(labels []string, values []float64) []analysis.Count {
	out := make([]analysis.Count, len(labels))
	for i := range labels {
		out[i] = analysis.Count{Key: labels[i], Value: int(values[i])}
	}
	return out
}

func renderYear(c *Context) (image.Image, error) {
	cs := baseCounts(c, "year")
	xs := make([]float64, len(cs))
	for i, cnt := range cs {
		y, err := strconv.Atoi(cnt.Key)
		if err != nil {
			return nil, fmt.Errorf("year %q: %w", cnt.Key, err)
		}
		xs[i] = float64(y)
	}
	return chart.Line(chart.LineSpec{
		Title:  "Fatalities by year",
		XLabel: "Year",
		YLabel: yLabel,
		Series: []chart.Series{{Name: "Road Fatalities", X: xs, Y: analysis.Values(cs)}},
		Size:   c.Size,
	})
}

func yearTotals(c *Context) ([]string, []float64) {
	cmp := compareCounts(c, "year")
	labels := []string{strconv.Itoa(c.Years.Start), strconv.Itoa(c.Years.End)}
	values := make([]float64, 2)
	for i, l := range cmp.Labels {
		if l == labels[0] {
			values[0] = cmp.Start[i]
		}
		if l == labels[1] {
			values[1] = cmp.End[i]
		}
	}
	return labels, values
}

func renderYearCompare(c *Context) (image.Image, error) {
	labels, values := yearTotals(c)
	return chart.Bar(chart.BarSpec{
		Title:  fmt.Sprintf("Fatalities in %d and %d", c.Years.Start, c.Years.End),
		XLabel: "Year",
		YLabel: yLabel,
		Labels: labels,
		Values: values,
	}, c.Size)
}

func barRenderer(field, xlabel string, rotate bool) func(*Context) (image.Image, error) {
	return func(c *Context) (image.Image, error) {
		cs := baseCounts(c, field)
		return chart.Bar(chart.BarSpec{
			Title:  "Fatalities by " + label(field),
			XLabel: xlabel,
			YLabel: yLabel,
			Labels: analysis.Keys(cs),
			Values: analysis.Values(cs),
			Rotate: rotate,
		}, c.Size)
	}
}

func groupedRenderer(field, xlabel string, rotate bool) func(*Context) (image.Image, error) {
	return func(c *Context) (image.Image, error) {
		cmp := compareCounts(c, field)
		return chart.GroupedBar(chart.GroupedBarSpec{
			Title:  fmt.Sprintf("Fatalities by %s, %d vs %d", label(field), c.Years.Start, c.Years.End),
			XLabel: xlabel,
			YLabel: yLabel,
			Labels: cmp.Labels,
			Groups: []chart.Group{
				{Name: strconv.Itoa(c.Years.Start), Values: cmp.Start},
				{Name: strconv.Itoa(c.Years.End), Values: cmp.End},
			},
			Rotate: rotate,
		}, c.Size)
	}
}

func pieRenderer(field string) func(*Context) (image.Image, error) {
	return func(c *Context) (image.Image, error) {
		cs := baseCounts(c, field)
		return chart.Pie(chart.PieSpec{
			Title:  "Fatalities by " + label(field),
			Labels: analysis.Keys(cs),
			Values: analysis.Values(cs),
			Size:   c.Size,
		})
	}
}

func pieCompareRenderer(field string) func(*Context) (image.Image, error) {
	return func(c *Context) (image.Image, error) {
		cmp := compareCounts(c, field)
		left, err := chart.Pie(chart.PieSpec{Title: strconv.Itoa(c.Years.Start), Labels: cmp.Labels, Values: cmp.Start, Size: c.Size})
		if err != nil {
			return nil, fmt.Errorf("%d: %w", c.Years.Start, err)
		}
		right, err := chart.Pie(chart.PieSpec{Title: strconv.Itoa(c.Years.End), Labels: cmp.Labels, Values: cmp.End, Size: c.Size})
		if err != nil {
			return nil, fmt.Errorf("%d: %w", c.Years.End, err)
		}
		return chart.SideBySide(left, right), nil
	}
}

func toChartBins(bins []analysis.Bin) []chart.Bin {
	out := make([]chart.Bin, len(bins))
	for i, b := range bins {
		out[i] = chart.Bin{Min: float64(b.Min), Max: float64(b.Max), Count: float64(b.Count)}
	}
	return out
}

func histRenderer(field, xlabel string) func(*Context) (image.Image, error) {
	return func(c *Context) (image.Image, error) {
		bins := analysis.Bins(analysis.Ints(c.Frame(), field), c.Step)
		return chart.Histogram(chart.HistSpec{
			Title:  "Fatalities by " + label(field),
			XLabel: xlabel,
			YLabel: yLabel,
			Bins:   toChartBins(bins),
		}, c.Size)
	}
}

// yearBins bins both compared years over the same range so the panels line up.
func yearBins(c *Context, field string) (start, end []analysis.Bin) {
	a := analysis.Ints(c.Year(c.Years.Start), field)
	b := analysis.Ints(c.Year(c.Years.End), field)
	n := len(analysis.Bins(append(append([]int(nil), a...), b...), c.Step))
	pad := func(bins []analysis.Bin) []analysis.Bin {
		for len(bins) < n {
			i := len(bins)
			bins = append(bins, analysis.Bin{Min: i * c.Step, Max: (i + 1) * c.Step})
		}
		return bins
	}
	return pad(analysis.Bins(a, c.Step)), pad(analysis.Bins(b, c.Step))
}

func histCompareRenderer(field, xlabel string) func(*Context) (image.Image, error) {
	return func(c *Context) (image.Image, error) {
		a, b := yearBins(c, field)
		left, err := chart.HistogramPlot(chart.HistSpec{Title: strconv.Itoa(c.Years.Start), XLabel: xlabel, YLabel: yLabel, Bins: toChartBins(a)})
		if err != nil {
			return nil, fmt.Errorf("%d: %w", c.Years.Start, err)
		}
		right, err := chart.HistogramPlot(chart.HistSpec{Title: strconv.Itoa(c.Years.End), XLabel: xlabel, YLabel: yLabel, Bins: toChartBins(b)})
		if err != nil {
			return nil, fmt.Errorf("%d: %w", c.Years.End, err)
		}
		return chart.Pair(left, right, c.Size), nil
	}
}

func renderSpeedCompare(c *Context) (image.Image, error) {
	var series []chart.Series
	for _, y := range []int{c.Years.Start, c.Years.End} {
		cs := analysis.CountBy(c.Year(y), "speed_limit")
		xs := make([]float64, 0, len(cs))
		ys := make([]float64, 0, len(cs))
		for _, cnt := range cs {
			v, err := strconv.Atoi(cnt.Key)
			if err != nil {
				continue
			}
			xs = append(xs, float64(v))
			ys = append(ys, float64(cnt.Value))
		}
		series = append(series, chart.Series{Name: strconv.Itoa(y), X: xs, Y: ys})
	}
	return chart.Line(chart.LineSpec{
		Title:  fmt.Sprintf("Fatalities by speed limit, %d vs %d", c.Years.Start, c.Years.End),
		XLabel: "Speed limit",
		YLabel: yLabel,
		Series: series,
		XRange: &chart.Range{Min: 10, Max: 150},
		Size:   c.Size,
	})
}

func baseTable(field string) func(*Context) analysis.Sheet {
	return func(c *Context) analysis.Sheet {
		return analysis.CountsSheet(field, field, baseCounts(c, field))
	}
}

func binTable(field string) func(*Context) analysis.Sheet {
	return func(c *Context) analysis.Sheet {
		s := analysis.Sheet{Header: []string{field + "_from", field + "_to", "fatalities"}}
		for _, b := range analysis.Bins(analysis.Ints(c.Frame(), field), c.Step) {
			s.Rows = append(s.Rows, []any{b.Min, b.Max, b.Count})
		}
		return s
	}
}

func compareTable(field string) func(*Context) analysis.Sheet {
	return func(c *Context) analysis.Sheet {
		cmp := compareCounts(c, field)
		s := analysis.Sheet{Header: []string{field, strconv.Itoa(c.Years.Start), strconv.Itoa(c.Years.End)}}
		for i, l := range cmp.Labels {
			s.Rows = append(s.Rows, []any{l, int(cmp.Start[i]), int(cmp.End[i])})
		}
		return s
	}
}

func yearCompareTable(c *Context) analysis.Sheet {
	labels, values := yearTotals(c)
	return analysis.CountsSheet("year_compare", "year", counts(labels, values))
}
