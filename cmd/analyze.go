package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/roadstats-cli/internal/analysis"
	"github.com/KaramelBytes/roadstats-cli/internal/dataset"
)

var (
	anaOutputPath string
	anaSheetName  string
	anaRaw        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Summarize the cleaned dataset as Markdown",
	Long: `Load and clean a data file the same way generate does, then print a
compact Markdown summary: row count, year span, per-column kind and missing
ratio, top values and fatalities per year. Defaults to the configured data file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opt, err := optionsFromConfig(c)
		if err != nil {
			return err
		}
		path := opt.DataFile
		if len(args) == 1 {
			path = args[0]
		}
		sheet := opt.Sheet
		if anaSheetName != "" {
			sheet = anaSheetName
		}

		required := opt.Rules.Required()
		if anaRaw {
			required = nil
		}
		df, err := dataset.Load(path, dataset.LoadOptions{Delimiter: opt.Delimiter, Sheet: sheet, Required: required})
		if err != nil {
			return err
		}
		if !anaRaw {
			data, err := dataset.Clean(df, opt.Rules)
			if err != nil {
				return fmt.Errorf("clean %s: %w", filepath.Base(path), err)
			}
			df = data.Frame()
		}
		md := analysis.Summarize(df, filepath.Base(path)).Markdown()

		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote analysis to %s\n", okMark("✓"), anaOutputPath)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the summary to this file instead of stdout")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "worksheet to read from an .xlsx file")
	analyzeCmd.Flags().BoolVar(&anaRaw, "raw", false, "summarize the file as loaded, without cleaning")
}
