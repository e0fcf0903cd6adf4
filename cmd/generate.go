package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/roadstats-cli/internal/chart"
	"github.com/KaramelBytes/roadstats-cli/internal/manifest"
)

var (
	genDataFile   string
	genSheet      string
	genStartYear  int
	genEndYear    int
	genOutDir     string
	genFormat     string
	genKeepGoing  bool
	genOnly       []string
	genNoWorkbook bool
	genPrintMan   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render every chart and write the static site",
	Example: `  roadstats generate
  roadstats generate -f data/traffic.csv -s 2010 -e 2020
  roadstats generate -o public --format png --keep-going
  roadstats generate --only state,state_compare --no-workbook`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		// Flags keep their values between invocations in tests; only apply the ones set in this parse.
		provided := map[string]bool{}
		cmd.Flags().Visit(func(fl *pflag.Flag) {
			provided[fl.Name] = true
		})

		opt, err := optionsFromConfig(c)
		if err != nil {
			return err
		}
		if provided["data-file"] {
			opt.DataFile = genDataFile
		}
		if provided["sheet"] {
			opt.Sheet = genSheet
		}
		if provided["compare-start-year"] {
			opt.StartYear = genStartYear
		}
		if provided["compare-end-year"] {
			opt.EndYear = genEndYear
		}
		if provided["out"] {
			opt.OutDir = genOutDir
		}
		if provided["format"] {
			f, err := chart.ParseFormat(genFormat)
			if err != nil {
				return err
			}
			opt.Format = f
		}
		if provided["keep-going"] {
			opt.KeepGoing = genKeepGoing
		}
		if provided["only"] {
			opt.Only = genOnly
		}
		if provided["no-workbook"] {
			opt.NoWorkbook = genNoWorkbook
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()
		m, err := buildSite(ctx, opt, logger)
		printSummary(cmd, m)
		if err != nil {
			return err
		}
		if provided["print-manifest"] && genPrintMan {
			saved, err := manifest.Load(opt.OutDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d charts, %d pages\n", saved.RunID, len(saved.Charts), len(saved.Pages))
			for _, e := range saved.Charts {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e.Path)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&genDataFile, "data-file", "f", "", "data file to read (default from config: data/traffic.csv)")
	generateCmd.Flags().StringVar(&genSheet, "sheet", "", "worksheet to read from an .xlsx data file")
	generateCmd.Flags().IntVarP(&genStartYear, "compare-start-year", "s", 0, "first compared year (default: earliest year in data)")
	generateCmd.Flags().IntVarP(&genEndYear, "compare-end-year", "e", 0, "second compared year (default: latest year in data)")
	generateCmd.Flags().StringVarP(&genOutDir, "out", "o", "", "output directory (default from config: static)")
	generateCmd.Flags().StringVar(&genFormat, "format", "", "chart image format: jpg|png")
	generateCmd.Flags().BoolVar(&genKeepGoing, "keep-going", false, "continue past failing charts and report them at the end")
	generateCmd.Flags().StringSliceVar(&genOnly, "only", nil, "render only these reports (names with or without the fatalities_by_ prefix)")
	generateCmd.Flags().BoolVar(&genNoWorkbook, "no-workbook", false, "skip the summary.xlsx workbook")
	generateCmd.Flags().BoolVar(&genPrintMan, "print-manifest", false, "print the saved manifest after the build")
}

func printSummary(cmd *cobra.Command, m *manifest.Manifest) {
	if m == nil {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d charts, %d pages in %s (%d-%d, %d rows)\n",
		okMark("✓"), len(m.Charts), len(m.Pages), m.RootDir(), m.StartYear, m.EndYear, m.Rows)
	for _, f := range m.Failures {
		fmt.Fprintf(out, "%s %s: %s\n", failMark("✗"), f.Report, strings.TrimSpace(f.Error))
	}
}

// commandContext returns cmd's context, or Background when it has none.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
