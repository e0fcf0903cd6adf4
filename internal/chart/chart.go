// Package chart renders fatality aggregates as raster images.
//
// Line and pie charts are drawn with go-chart; bars and histograms with
// gonum/plot, which can also tile two plots into one figure.
package chart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
)

// ErrNoData is returned when a renderer receives nothing to draw.
var ErrNoData = errors.New("no data to chart")

// Format is an output image encoding.
type Format string

const (
	JPEG Format = "jpg"
	PNG  Format = "png"
)

// ParseFormat accepts jpg, jpeg and png, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	}
	return "", fmt.Errorf("unsupported image format %q (use jpg or png)", s)
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string { return string(f) }

// Size is an image size in pixels.
type Size struct {
	Width, Height int
}

// DefaultSize matches the page layout.
var DefaultSize = Size{Width: 800, Height: 600}

func (s Size) orDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultSize
	}
	return s
}

// Encode writes img in the given format. JPEG uses quality 90.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case JPEG, "":
		return jpeg.Encode(w, flatten(img), &jpeg.Options{Quality: 90})
	case PNG:
		return png.Encode(w, img)
	}
	return fmt.Errorf("unsupported image format %q", f)
}

// flatten composites img over white so transparent areas do not turn black in JPEG.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}

// SideBySide places left and right next to each other on a white canvas.
// The right panel is scaled to the left panel's height when they differ.
func SideBySide(left, right image.Image) image.Image {
	lb, rb := left.Bounds(), right.Bounds()
	h := lb.Dy()
	rw := rb.Dx()
	if rb.Dy() != h && rb.Dy() > 0 {
		rw = rb.Dx() * h / rb.Dy()
	}
	out := image.NewRGBA(image.Rect(0, 0, lb.Dx()+rw, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, 0, lb.Dx(), h), left, lb.Min, draw.Over)
	dst := image.Rect(lb.Dx(), 0, lb.Dx()+rw, h)
	if rw == rb.Dx() {
		draw.Draw(out, dst, right, rb.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(out, dst, right, rb, draw.Over, nil)
	}
	return out
}
