package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/roadstats-cli/internal/analysis"
	"github.com/KaramelBytes/roadstats-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/roadstats-cli/internal/config"
	"github.com/KaramelBytes/roadstats-cli/internal/dataset"
	"github.com/KaramelBytes/roadstats-cli/internal/manifest"
	"github.com/KaramelBytes/roadstats-cli/internal/report"
	"github.com/KaramelBytes/roadstats-cli/internal/site"
	"github.com/KaramelBytes/roadstats-cli/internal/utils"
)

// buildOptions is everything one site build needs, after flags and config are merged.
type buildOptions struct {
	DataFile   string
	Sheet      string
	Delimiter  rune
	OutDir     string
	StartYear  int
	EndYear    int
	Format     chart.Format
	Size       chart.Size
	Step       int
	Rules      dataset.Rules
	Groups     [][]string
	Title      string
	KeepGoing  bool
	Only       []string
	NoWorkbook bool
}

func optionsFromConfig(c *cfgpkg.Global) (buildOptions, error) {
	format, err := chart.ParseFormat(c.ImageFormat)
	if err != nil {
		return buildOptions{}, err
	}
	delim, err := parseDelimiter(c.Delimiter)
	if err != nil {
		return buildOptions{}, err
	}
	return buildOptions{
		DataFile:  c.DataFile,
		Sheet:     c.DataSheet,
		Delimiter: delim,
		OutDir:    c.OutputDir,
		Format:    format,
		Size:      chart.Size{Width: c.ImageWidth, Height: c.ImageHeight},
		Step:      c.StepSize,
		Rules: dataset.Rules{
			StartingYear:       c.StartingYear,
			PrimaryRoadUsers:   c.PrimaryRoadUsers,
			InvolvementColumns: c.InvolvementColumns,
		},
		Groups:     c.Groups,
		Title:      c.SiteTitle,
		KeepGoing:  c.KeepGoing,
		NoWorkbook: !c.WriteWorkbook,
	}, nil
}

// buildSite loads and cleans the data, renders every selected chart and
// writes the pages, the workbook and manifest.json under opt.OutDir.
func buildSite(ctx context.Context, opt buildOptions, log zerolog.Logger) (*manifest.Manifest, error) {
	log.Info().Msgf("Data file: %s", opt.DataFile)
	raw, err := dataset.Load(opt.DataFile, dataset.LoadOptions{
		Delimiter: opt.Delimiter,
		Sheet:     opt.Sheet,
		Required:  opt.Rules.Required(),
	})
	if err != nil {
		return nil, err
	}

	log.Info().Msg("Processing input data")
	data, err := dataset.Clean(raw, opt.Rules)
	if err != nil {
		return nil, fmt.Errorf("clean %s: %w", filepath.Base(opt.DataFile), err)
	}
	log.Debug().Int("rows", data.Rows()).Int("raw_rows", raw.Nrow()).Msg("Cleaned data")

	years, err := dataset.ResolveYears(data, opt.StartYear, opt.EndYear)
	if err != nil {
		return nil, err
	}
	log.Debug().Msgf("Compare statistics will be generated between years %d and %d", years.Start, years.End)

	reg := report.Catalog()
	checkGroups(reg, opt.Groups, log)
	if len(opt.Only) > 0 {
		if reg, err = reg.Select(opt.Only); err != nil {
			return nil, err
		}
	}

	m := manifest.New(opt.OutDir, opt.DataFile)
	m.Rows = data.Rows()
	m.StartYear, m.EndYear = years.Start, years.End

	rctx := report.NewContext(data, years, opt.Step, opt.Size)
	runner := &report.Runner{
		Context:   rctx,
		ChartsDir: filepath.Join(opt.OutDir, site.AutoDir, site.ChartsDir),
		Format:    opt.Format,
		KeepGoing: opt.KeepGoing,
		Log:       log,
	}
	log.Info().Msg("Updating all charts")
	res, runErr := runner.Run(ctx, reg)
	if res != nil {
		for _, c := range res.Charts {
			m.AddChart(c.Name, c.Path)
		}
		for _, f := range res.Failures {
			m.AddFailure(f.Report, f.Err)
		}
	}
	if runErr != nil {
		var rerr *report.RenderError
		if errors.As(runErr, &rerr) {
			m.AddFailure(rerr.Report, rerr.Err)
		}
		if err := m.Save(); err != nil {
			log.Warn().Err(err).Msg("Failed to save manifest")
		}
		return m, runErr
	}
	log.Info().Msg("Completed generating static files for the website")

	dataLink := filepath.ToSlash(filepath.Join(site.DataDir, filepath.Base(opt.DataFile)))
	if err := utils.CopyFile(opt.DataFile, filepath.Join(opt.OutDir, filepath.FromSlash(dataLink))); err != nil {
		return m, fmt.Errorf("copy data file: %w", err)
	}

	workbookLink := ""
	if !opt.NoWorkbook {
		workbookLink = site.AutoDir + "/summary.xlsx"
		path := filepath.Join(opt.OutDir, filepath.FromSlash(workbookLink))
		if err := analysis.WriteWorkbook(path, report.Sheets(rctx, reg)); err != nil {
			return m, fmt.Errorf("write workbook: %w", err)
		}
		m.Workbook = workbookLink
		log.Debug().Msgf("Writing %s", path)
	}

	builder, err := site.New(site.Options{
		OutDir:   opt.OutDir,
		Title:    opt.Title,
		Groups:   opt.Groups,
		Start:    years.Start,
		End:      years.End,
		First:    data.MinYear(),
		Last:     data.MaxYear(),
		Ext:      opt.Format.Ext(),
		DataFile: dataLink,
		Workbook: workbookLink,
	})
	if err != nil {
		return m, err
	}
	pages, err := builder.WriteGroupPages()
	if err != nil {
		return m, err
	}
	for i, p := range builder.Pages() {
		log.Debug().Msgf("Writing %s", pages[i])
		m.AddPage(p.Name, pages[i])
	}
	index, err := builder.WriteIndex()
	if err != nil {
		return m, err
	}
	m.AddPage("index", index)
	log.Info().Msg("Completed generating html pages")

	if err := m.Save(); err != nil {
		return m, fmt.Errorf("save manifest: %w", err)
	}
	if err := res.Err(); err != nil {
		return m, fmt.Errorf("%d of %d reports failed: %w", len(res.Failures), reg.Len(), err)
	}
	return m, nil
}

// checkGroups warns about page fields that have no chart to show.
func checkGroups(reg *report.Registry, groups [][]string, log zerolog.Logger) {
	for _, g := range groups {
		for _, f := range g {
			if _, ok := reg.Get(report.BaseName(f)); !ok {
				log.Warn().Str("field", f).Msg("No report for page field")
			}
			if _, ok := reg.Get(report.CompareName(f)); !ok {
				log.Warn().Str("field", f).Msg("No comparison report for page field")
			}
		}
	}
}
