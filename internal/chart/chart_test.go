package chart

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var small = Size{Width: 320, Height: 240}

func TestLineSingleYear(t *testing.T) {
	img, err := Line(LineSpec{
		Title:  "Fatalities by year",
		XLabel: "Year",
		YLabel: "Road Fatalities",
		Series: []Series{{Name: "fatalities", X: []float64{2010}, Y: []float64{3}}},
		Size:   small,
	})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())
}

func TestLineWithLegendAndRange(t *testing.T) {
	img, err := Line(LineSpec{
		Series: []Series{
			{Name: "2010", X: []float64{50, 60, 100}, Y: []float64{1, 4, 2}},
			{Name: "2012", X: []float64{60, 110}, Y: []float64{2, 2}},
		},
		XRange: &Range{Min: 10, Max: 150},
		Size:   small,
	})
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
}

func TestLineNoData(t *testing.T) {
	_, err := Line(LineSpec{Series: []Series{{Name: "empty"}}})
	require.ErrorIs(t, err, ErrNoData)
}

func TestPie(t *testing.T) {
	img, err := Pie(PieSpec{Title: "Gender", Labels: []string{"Male", "Female", "Unknown"}, Values: []float64{5, 3, 0}, Size: small})
	require.NoError(t, err)
	assert.Equal(t, 240, img.Bounds().Dy())

	_, err = Pie(PieSpec{Labels: []string{"Male"}, Values: []float64{0}})
	require.ErrorIs(t, err, ErrNoData)
}

func TestBarAndGroupedBar(t *testing.T) {
	img, err := Bar(BarSpec{Labels: []string{"NSW", "VIC"}, Values: []float64{3, 2}, Rotate: true}, small)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())

	img, err = GroupedBar(GroupedBarSpec{
		Labels: []string{"NSW", "VIC"},
		Groups: []Group{{Name: "2010", Values: []float64{1, 1}}, {Name: "2012", Values: []float64{2, 0}}},
	}, small)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())

	_, err = GroupedBar(GroupedBarSpec{Labels: []string{"NSW"}, Groups: []Group{{Name: "2010", Values: []float64{1, 2}}}}, small)
	require.Error(t, err)

	_, err = Bar(BarSpec{}, small)
	require.ErrorIs(t, err, ErrNoData)
}

func TestHistogramAndPair(t *testing.T) {
	bins := []Bin{{Min: 0, Max: 10, Count: 2}, {Min: 10, Max: 20, Count: 5}}
	img, err := Histogram(HistSpec{Title: "Age", Bins: bins}, small)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())

	left, err := HistogramPlot(HistSpec{Title: "2010", Bins: bins})
	require.NoError(t, err)
	right, err := HistogramPlot(HistSpec{Title: "2012", Bins: bins})
	require.NoError(t, err)
	pair := Pair(left, right, small)
	assert.Equal(t, image.Rect(0, 0, 640, 240), pair.Bounds())

	_, err = HistogramPlot(HistSpec{})
	require.ErrorIs(t, err, ErrNoData)
}

func TestSideBySideScalesRightPanel(t *testing.T) {
	left := image.NewRGBA(image.Rect(0, 0, 100, 50))
	right := image.NewRGBA(image.Rect(0, 0, 40, 100))
	out := SideBySide(left, right)
	assert.Equal(t, image.Rect(0, 0, 120, 50), out.Bounds())
}

func TestEncodeFormats(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, JPEG))
	_, err := jpeg.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, Encode(&buf, img, PNG))
	_, err = png.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	require.Error(t, Encode(&buf, img, Format("gif")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JPEG")
	require.NoError(t, err)
	assert.Equal(t, JPEG, f)
	assert.Equal(t, "jpg", f.Ext())

	f, err = ParseFormat("png")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)

	_, err = ParseFormat("svg")
	require.Error(t, err)
}
