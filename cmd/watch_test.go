package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/KaramelBytes/roadstats-cli/internal/config"
	"github.com/KaramelBytes/roadstats-cli/internal/manifest"
)

func TestWatchLoopRebuildsOnChange(t *testing.T) {
	home, data := setupHome(t)
	out := filepath.Join(home, "watched")

	c, err := cfgpkg.Load("")
	require.NoError(t, err)
	opt, err := optionsFromConfig(c)
	require.NoError(t, err)
	opt.DataFile, opt.OutDir, opt.KeepGoing = data, out, true

	prev := watchDebounce
	watchDebounce = 50 * time.Millisecond
	t.Cleanup(func() { watchDebounce = prev })

	cmd := &cobra.Command{}
	cmd.SetOut(io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchLoop(ctx, cmd, opt, zerolog.Nop()) }()

	rows := func() int {
		m, err := manifest.Load(out)
		if err != nil {
			return 0
		}
		return m.Rows
	}
	require.Eventually(t, func() bool { return rows() == 10 }, 30*time.Second, 50*time.Millisecond)

	extra := trafficCSV + "2012,NT,10:30,Driver,Male,40,Single,Friday,130,No,No,No\n"
	require.NoError(t, os.WriteFile(data, []byte(extra), 0o644))
	require.Eventually(t, func() bool { return rows() == 11 }, 30*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(30 * time.Second):
		t.Fatal("watch loop did not stop")
	}
}
