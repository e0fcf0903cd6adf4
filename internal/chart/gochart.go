package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Series is one named line.
type Series struct {
	Name string
	X, Y []float64
}

// Range bounds an axis.
type Range struct {
	Min, Max float64
}

// LineSpec describes a line chart. A legend is drawn when there is more than one series.
type LineSpec struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
	// XRange fixes the x axis; nil derives it from the data.
	XRange *Range
	Size   Size
}

// PieSpec describes a pie chart. Slices with a zero value are left out.
type PieSpec struct {
	Title  string
	Labels []string
	Values []float64
	Size   Size
}

var palette = []drawing.Color{
	drawing.ColorFromHex("4C72B0"),
	drawing.ColorFromHex("DD8452"),
	drawing.ColorFromHex("55A868"),
	drawing.ColorFromHex("C44E52"),
	drawing.ColorFromHex("8172B3"),
	drawing.ColorFromHex("937860"),
	drawing.ColorFromHex("DA8BC3"),
	drawing.ColorFromHex("8C8C8C"),
}

// Line renders a line chart with go-chart.
func Line(spec LineSpec) (image.Image, error) {
	size := spec.Size.orDefault()
	xlo, xhi := math.Inf(1), math.Inf(-1)
	yhi := 0.0
	var series []gochart.Series
	for i, s := range spec.Series {
		if len(s.X) == 0 || len(s.X) != len(s.Y) {
			continue
		}
		for j := range s.X {
			xlo = math.Min(xlo, s.X[j])
			xhi = math.Max(xhi, s.X[j])
			yhi = math.Max(yhi, s.Y[j])
		}
		c := palette[i%len(palette)]
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: s.X,
			YValues: s.Y,
			Style:   gochart.Style{StrokeColor: c, StrokeWidth: 2.5, DotColor: c, DotWidth: 3},
		})
	}
	if len(series) == 0 {
		return nil, ErrNoData
	}
	if spec.XRange != nil {
		xlo, xhi = spec.XRange.Min, spec.XRange.Max
	}
	// go-chart rejects zero-width ranges
	if xlo == xhi {
		xlo, xhi = xlo-1, xhi+1
	}
	if yhi == 0 {
		yhi = 1
	}

	graph := gochart.Chart{
		Title:      spec.Title,
		Width:      size.Width,
		Height:     size.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:           spec.XLabel,
			ValueFormatter: intFormatter,
			Range:          &gochart.ContinuousRange{Min: xlo, Max: xhi},
		},
		YAxis: gochart.YAxis{
			Name:           spec.YLabel,
			ValueFormatter: intFormatter,
			Range:          &gochart.ContinuousRange{Min: 0, Max: yhi * 1.1},
		},
		Series: series,
	}
	if len(series) > 1 {
		graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	}
	return renderGoChart(graph.Render)
}

// Pie renders a pie chart with percentage labels.
func Pie(spec PieSpec) (image.Image, error) {
	size := spec.Size.orDefault()
	total := 0.0
	for _, v := range spec.Values {
		total += v
	}
	if total <= 0 || len(spec.Labels) != len(spec.Values) {
		return nil, ErrNoData
	}
	var values []gochart.Value
	for i, v := range spec.Values {
		if v <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Value: v,
			Label: fmt.Sprintf("%s (%.1f%%)", spec.Labels[i], v*100/total),
			Style: gochart.Style{FillColor: palette[i%len(palette)], StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
		})
	}
	pie := gochart.PieChart{
		Title:  spec.Title,
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}
	return renderGoChart(pie.Render)
}

func renderGoChart(render func(gochart.RendererProvider, io.Writer) error) (image.Image, error) {
	var buf bytes.Buffer
	if err := render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	return img, nil
}

func intFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}
