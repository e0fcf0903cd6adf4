package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/roadstats-cli/internal/config"
	"github.com/KaramelBytes/roadstats-cli/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	logFile string

	// Loaded configuration
	cfg *cfgpkg.Global

	logger    = zerolog.Nop()
	logCloser io.Closer
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "roadstats",
	Short: "roadstats: static charts and pages for road fatality data",
	Long: `roadstats reads a road fatality dataset, cleans it, renders a fixed set of
charts and writes static HTML pages that compare two years side by side.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
			logCloser = nil
		}
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failMark("✗ Error:"), err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.roadstats/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config call requireConfig
		fmt.Fprintf(os.Stderr, "%s failed to load config: %v\n", warnMark("⚠ Warning:"), err)
		cfg = nil
		return
	}
	cfg = c
}

// requireConfig returns the loaded configuration or the load error.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

func setupLogging(cmd *cobra.Command, args []string) error {
	opt := logging.Options{Debug: debug, File: logFile, Console: cmd.OutOrStdout()}
	if cfg != nil {
		opt.Level = cfg.LogLevel
		if opt.File == "" {
			opt.File = cfg.LogFile
		}
	}
	l, closer, err := logging.New(opt)
	if err != nil {
		return err
	}
	logger = l
	logCloser = closer
	return nil
}
