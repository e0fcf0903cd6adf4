package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	watchEvery    string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the site whenever the data file changes",
	Long: `Run generate once, then again every time the data file is written or
replaced. --every adds a schedule ("@every 1h" or a six-field cron spec with
seconds). Builds run one at a time; a failed build is logged and watching continues.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opt, err := optionsFromConfig(c)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("data-file") {
			opt.DataFile = genDataFile
		}
		if cmd.Flags().Changed("out") {
			opt.OutDir = genOutDir
		}
		// a watcher should not stop on the first broken chart
		opt.KeepGoing = true

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()
		return watchLoop(ctx, cmd, opt, logger)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&genDataFile, "data-file", "f", "", "data file to watch (default from config)")
	watchCmd.Flags().StringVarP(&genOutDir, "out", "o", "", "output directory (default from config)")
	watchCmd.Flags().StringVar(&watchEvery, "every", "", `also rebuild on this schedule, e.g. "@every 30m"`)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "wait this long after the last change before rebuilding")
}

func watchLoop(ctx context.Context, cmd *cobra.Command, opt buildOptions, log zerolog.Logger) error {
	rebuild := func(reason string) {
		log.Info().Str("trigger", reason).Msg("Rebuilding site")
		m, err := buildSite(ctx, opt, log)
		printSummary(cmd, m)
		if err != nil {
			log.Error().Err(err).Msg("Build failed")
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	// watch the directory: editors often replace the file instead of writing it
	target, err := filepath.Abs(opt.DataFile)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	tick := make(chan struct{}, 1)
	if watchEvery != "" {
		sched := cron.New()
		if err := sched.AddFunc(watchEvery, func() {
			select {
			case tick <- struct{}{}:
			default:
			}
		}); err != nil {
			return fmt.Errorf("invalid --every %q: %w", watchEvery, err)
		}
		sched.Start()
		defer sched.Stop()
	}

	rebuild("start")
	log.Info().Msgf("Watching %s", target)
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopped watching")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(ev.Name)
			if name != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			log.Debug().Str("op", ev.Op.String()).Msg("Data file changed")
			debounce = time.After(watchDebounce)
		case <-debounce:
			debounce = nil
			rebuild("change")
		case <-tick:
			rebuild("schedule")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")
		}
	}
}
