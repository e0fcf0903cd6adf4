package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/roadstats-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/roadstats-cli/internal/config"
	"github.com/KaramelBytes/roadstats-cli/internal/dataset"
	"github.com/KaramelBytes/roadstats-cli/internal/manifest"
	"github.com/KaramelBytes/roadstats-cli/internal/report"
)

const trafficCSV = `year,state,time,road_user,gender,age,crash_type,dayweek,speed_limit,bus_involvement,rigid_truck_involvement,articulated_truck_involvement
2010,NSW,08:15,Driver,Male,30,Single,Monday,60,No,No,No
2010,VIC,17:30,Passenger,Female,22,Multiple,Friday,100,No,Yes,No
2010,NSW,23:05,Pedestrian,Male,71,Single,Sunday,50,No,No,No
2010,QLD,06:45,Driver,Male,45,Single,Tuesday,110,No,No,No
2010,SA,19:40,Pedal cyclist,Female,36,Single,Saturday,60,No,No,No
2012,QLD,12:10,Motorcycle rider,Male,28,Single,Saturday,80,No,No,No
2012,NSW,14:20,Driver,Female,55,Multiple,Monday,60,Yes,No,No
2012,WA,03:10,Pedal cyclist,Male,19,Single,Wednesday,70,No,No,No
2012,VIC,09:00,Passenger,Female,8,Multiple,Thursday,100,No,No,No
2012,TAS,21:55,Driver,Male,63,Single,Sunday,100,No,No,Yes
`

// resetFlags clears values and Changed state that pflag keeps between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns its output.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setupHome(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	data = filepath.Join(home, "data", "traffic.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(data), 0o755))
	require.NoError(t, os.WriteFile(data, []byte(trafficCSV), 0o644))
	return home, data
}

func TestCLI_GenerateBuildsWholeSite(t *testing.T) {
	home, data := setupHome(t)
	out := filepath.Join(home, "site")

	output, err := runCmd(t, "generate", "-f", data, "-o", out)
	require.NoError(t, err, output)
	assert.Contains(t, output, "Generated fatalities_by_year")
	assert.Contains(t, output, "Completed generating html pages")

	for _, name := range report.Catalog().Names() {
		_, err := os.Stat(filepath.Join(out, "auto", "charts", name+".jpg"))
		assert.NoError(t, err, "missing chart %s", name)
	}
	for _, group := range cfgpkg.DefaultGroups {
		page := filepath.Join(out, "auto", strings.Join(group, "_")+".html")
		_, err := os.Stat(page)
		assert.NoError(t, err, "missing page %s", page)
	}
	for _, p := range []string{"index.html", "data/traffic.csv", "auto/summary.xlsx", "manifest.json"} {
		_, err := os.Stat(filepath.Join(out, filepath.FromSlash(p)))
		assert.NoError(t, err, p)
	}

	m, err := manifest.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 10, m.Rows)
	assert.Equal(t, 2010, m.StartYear)
	assert.Equal(t, 2012, m.EndYear)
	assert.Len(t, m.Charts, report.Catalog().Len())
	assert.Len(t, m.Pages, len(cfgpkg.DefaultGroups)+1)
	assert.Empty(t, m.Failures)

	page, err := os.ReadFile(filepath.Join(out, "auto", "age_gender.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Comparison statistics of age between 2010 and 2012")
}

func TestCLI_GeneratePNGWithoutWorkbook(t *testing.T) {
	home, data := setupHome(t)
	out := filepath.Join(home, "png")

	output, err := runCmd(t, "generate", "-f", data, "-o", out, "--format", "png", "--no-workbook", "--only", "state,fatalities_by_age_compare")
	require.NoError(t, err, output)

	entries, err := os.ReadDir(filepath.Join(out, "auto", "charts"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"fatalities_by_state.png", "fatalities_by_age_compare.png"}, names)
	_, err = os.Stat(filepath.Join(out, "auto", "summary.xlsx"))
	assert.True(t, os.IsNotExist(err))
}

func TestCLI_GenerateRejectsYearsOutsideData(t *testing.T) {
	home, data := setupHome(t)

	_, err := runCmd(t, "generate", "-f", data, "-o", filepath.Join(home, "out"), "-s", "2001")
	var yr *dataset.YearRangeError
	require.True(t, errors.As(err, &yr), "got %v", err)

	_, err = runCmd(t, "generate", "-f", data, "-o", filepath.Join(home, "out"), "-e", "2030")
	require.True(t, errors.As(err, &yr), "got %v", err)
}

func TestCLI_GenerateFailFastAndKeepGoing(t *testing.T) {
	home, data := setupHome(t)

	// 2011 is inside the data span but has no rows, so the comparison pies have nothing to draw
	out := filepath.Join(home, "fast")
	_, err := runCmd(t, "generate", "-f", data, "-o", out, "-s", "2011")
	var rerr *report.RenderError
	require.True(t, errors.As(err, &rerr), "got %v", err)
	assert.Equal(t, "fatalities_by_gender_compare", rerr.Report)
	assert.ErrorIs(t, err, chart.ErrNoData)
	_, statErr := os.Stat(filepath.Join(out, "index.html"))
	assert.True(t, os.IsNotExist(statErr), "fail-fast build should not write pages")

	out = filepath.Join(home, "keep")
	output, err := runCmd(t, "generate", "-f", data, "-o", out, "-s", "2011", "--keep-going")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 of 18 reports failed")
	assert.Contains(t, output, "✗ fatalities_by_dayweek_compare")

	m, err := manifest.Load(out)
	require.NoError(t, err)
	assert.Len(t, m.Failures, 4)
	assert.Len(t, m.Charts, 14)
	_, statErr = os.Stat(filepath.Join(out, "index.html"))
	assert.NoError(t, statErr)
}

func TestCLI_AnalyzeAndReports(t *testing.T) {
	home, data := setupHome(t)

	output, err := runCmd(t, "analyze", data)
	require.NoError(t, err)
	assert.Contains(t, output, "[DATASET SUMMARY]")
	assert.Contains(t, output, "Rows: 10")
	assert.Contains(t, output, "Years: 2010-2012")
	assert.Contains(t, output, "Other(2)")

	summary := filepath.Join(home, "summary.md")
	_, err = runCmd(t, "analyze", data, "-o", summary)
	require.NoError(t, err)
	b, err := os.ReadFile(summary)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "[DATASET SUMMARY]"))

	output, err = runCmd(t, "reports")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, report.Catalog().Len())
	assert.True(t, strings.HasPrefix(lines[0], "- fatalities_by_year:"))
	assert.True(t, strings.HasPrefix(lines[17], "- fatalities_by_dayweek_compare:"))
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home, _ := setupHome(t)

	_, err := runCmd(t, "config", "set", "starting_year", "2009")
	require.NoError(t, err)
	_, err = runCmd(t, "config", "set", "groups", "age,gender;state")
	require.NoError(t, err)
	_, err = runCmd(t, "config", "set", "image_format", "gif")
	require.Error(t, err)
	_, err = runCmd(t, "config", "set", "nope", "1")
	require.Error(t, err)

	_, err = os.Stat(filepath.Join(home, ".roadstats", "config.yaml"))
	require.NoError(t, err)

	output, err := runCmd(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "starting_year: 2009")
	assert.Contains(t, output, "groups: [age gender] [state]")
}
