package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/roadstats-cli/internal/chart"
	"github.com/KaramelBytes/roadstats-cli/internal/utils"
)

// RenderError ties a failure to the report that produced it.
type RenderError struct {
	Report string
	Err    error
}

func (e *RenderError) Error() string { return fmt.Sprintf("report %s: %v", e.Report, e.Err) }

func (e *RenderError) Unwrap() error { return e.Err }

// Output is one chart written to disk.
type Output struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Result lists what a run produced.
type Result struct {
	Charts   []Output
	Failures []*RenderError
}

// Err joins every failure, or returns nil when there were none.
func (r *Result) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Runner renders reports in order and writes <ChartsDir>/<name>.<ext>.
type Runner struct {
	Context   *Context
	ChartsDir string
	Format    chart.Format
	// KeepGoing records failures and carries on instead of stopping at the first one.
	KeepGoing bool
	Log       zerolog.Logger
}

// Run renders every report in reg. Cancellation is checked between reports.
func (r *Runner) Run(ctx context.Context, reg *Registry) (*Result, error) {
	if err := utils.EnsureDir(r.ChartsDir); err != nil {
		return nil, fmt.Errorf("ensure charts dir: %w", err)
	}
	format := r.Format
	if format == "" {
		format = chart.JPEG
	}
	res := &Result{}
	for _, d := range reg.List() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path := filepath.Join(r.ChartsDir, d.Name+"."+format.Ext())
		if err := r.renderOne(d, path, format); err != nil {
			rerr := &RenderError{Report: d.Name, Err: err}
			if !r.KeepGoing {
				return res, rerr
			}
			r.Log.Error().Err(err).Str("report", d.Name).Msg("Failed to generate chart")
			res.Failures = append(res.Failures, rerr)
			continue
		}
		r.Log.Info().Msgf("Generated %s", d.Name)
		res.Charts = append(res.Charts, Output{Name: d.Name, Path: path})
	}
	return res, nil
}

func (r *Runner) renderOne(d Descriptor, path string, format chart.Format) error {
	r.Log.Debug().Str("report", d.Name).Str("field", d.Field).Msg("Rendering")
	img, err := d.Render(r.Context)
	if err != nil {
		return err
	}
	return utils.SafeWriteFunc(path, func(w io.Writer) error {
		return chart.Encode(w, img, format)
	})
}
