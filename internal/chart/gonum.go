package chart

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// BarSpec describes a bar chart with one bar per label.
type BarSpec struct {
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Values []float64
	// Rotate turns x tick labels vertical.
	Rotate bool
}

// Group is one hue of a grouped bar chart, aligned with GroupedBarSpec.Labels.
type Group struct {
	Name   string
	Values []float64
}

// GroupedBarSpec describes bars grouped per label, one colour per group.
type GroupedBarSpec struct {
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Groups []Group
	Rotate bool
}

// Bin is one histogram bucket [Min, Max).
type Bin struct {
	Min, Max float64
	Count    float64
}

// HistSpec describes a histogram over precomputed bins.
type HistSpec struct {
	Title  string
	XLabel string
	YLabel string
	Bins   []Bin
}

var barFill = color.RGBA{R: 0x4C, G: 0x72, B: 0xB0, A: 0xFF}

// BarPlot builds a gonum bar plot.
func BarPlot(spec BarSpec, size Size) (*plot.Plot, error) {
	if len(spec.Values) == 0 || len(spec.Labels) != len(spec.Values) {
		return nil, ErrNoData
	}
	size = size.orDefault()
	p := newPlot(spec.Title, spec.XLabel, spec.YLabel)

	bars, err := plotter.NewBarChart(plotter.Values(spec.Values), barWidth(size, len(spec.Values), 1))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = barFill
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(spec.Labels...)
	rotate(p, spec.Rotate)
	return p, nil
}

// GroupedBarPlot builds a gonum bar plot with bars offset per group and a legend.
func GroupedBarPlot(spec GroupedBarSpec, size Size) (*plot.Plot, error) {
	if len(spec.Labels) == 0 || len(spec.Groups) == 0 {
		return nil, ErrNoData
	}
	size = size.orDefault()
	p := newPlot(spec.Title, spec.XLabel, spec.YLabel)
	p.Legend.Top = true

	n := len(spec.Groups)
	w := barWidth(size, len(spec.Labels), n)
	for i, g := range spec.Groups {
		if len(g.Values) != len(spec.Labels) {
			return nil, fmt.Errorf("group %s has %d values for %d labels", g.Name, len(g.Values), len(spec.Labels))
		}
		bars, err := plotter.NewBarChart(plotter.Values(g.Values), w)
		if err != nil {
			return nil, fmt.Errorf("bar chart %s: %w", g.Name, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * w
		p.Add(bars)
		p.Legend.Add(g.Name, bars)
	}
	p.NominalX(spec.Labels...)
	rotate(p, spec.Rotate)
	return p, nil
}

// HistogramPlot builds a gonum histogram from fixed bins.
func HistogramPlot(spec HistSpec) (*plot.Plot, error) {
	if len(spec.Bins) == 0 {
		return nil, ErrNoData
	}
	p := newPlot(spec.Title, spec.XLabel, spec.YLabel)
	h := &plotter.Histogram{
		Width:     spec.Bins[0].Max - spec.Bins[0].Min,
		FillColor: barFill,
		LineStyle: plotter.DefaultLineStyle,
	}
	h.LineStyle.Color = color.White
	for _, b := range spec.Bins {
		h.Bins = append(h.Bins, plotter.HistogramBin{Min: b.Min, Max: b.Max, Weight: b.Count})
	}
	p.Add(h)
	p.Y.Min = 0
	return p, nil
}

// Bar renders a bar chart.
func Bar(spec BarSpec, size Size) (image.Image, error) {
	p, err := BarPlot(spec, size)
	if err != nil {
		return nil, err
	}
	return Render(p, size), nil
}

// GroupedBar renders a grouped bar chart.
func GroupedBar(spec GroupedBarSpec, size Size) (image.Image, error) {
	p, err := GroupedBarPlot(spec, size)
	if err != nil {
		return nil, err
	}
	return Render(p, size), nil
}

// Histogram renders a histogram.
func Histogram(spec HistSpec, size Size) (image.Image, error) {
	p, err := HistogramPlot(spec)
	if err != nil {
		return nil, err
	}
	return Render(p, size), nil
}

// Render draws p onto a canvas of the given pixel size.
func Render(p *plot.Plot, size Size) image.Image {
	size = size.orDefault()
	c := newCanvas(size.Width, size.Height)
	p.Draw(draw.New(c))
	return c.Image()
}

// Pair tiles two plots in one row. The canvas is twice the given width.
func Pair(left, right *plot.Plot, size Size) image.Image {
	size = size.orDefault()
	c := newCanvas(2*size.Width, size.Height)
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: 2,
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 2,
	}
	plots := [][]*plot.Plot{{left, right}}
	canvases := plot.Align(plots, tiles, dc)
	for j, p := range plots[0] {
		p.Draw(canvases[0][j])
	}
	return c.Image()
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

// one point per pixel at 72 dpi
func newCanvas(w, h int) *vgimg.Canvas {
	return vgimg.NewWith(
		vgimg.UseWH(vg.Length(w), vg.Length(h)),
		vgimg.UseDPI(72),
		vgimg.UseBackgroundColor(color.White),
	)
}

func barWidth(size Size, labels, groups int) vg.Length {
	w := float64(size.Width) * 0.7 / float64(labels*groups)
	return vg.Points(math.Max(2, math.Min(w, 60)))
}

func rotate(p *plot.Plot, on bool) {
	if !on {
		return
	}
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}
