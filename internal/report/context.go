package report

import (
	"github.com/go-gota/gota/dataframe"

	"github.com/KaramelBytes/roadstats-cli/internal/analysis"
	"github.com/KaramelBytes/roadstats-cli/internal/chart"
	"github.com/KaramelBytes/roadstats-cli/internal/dataset"
)

// Context is the read-only input shared by every renderer in a run.
type Context struct {
	Data  *dataset.Fatalities
	Years dataset.Years
	// Step is the histogram bin width.
	Step int
	Size chart.Size

	compare *dataframe.DataFrame
}

// NewContext builds a render context.
func NewContext(data *dataset.Fatalities, years dataset.Years, step int, size chart.Size) *Context {
	if step <= 0 {
		step = 10
	}
	return &Context{Data: data, Years: years, Step: step, Size: size}
}

// Frame returns the full cleaned table.
func (c *Context) Frame() dataframe.DataFrame { return c.Data.Frame() }

// Compare returns only the rows from the two compared years.
func (c *Context) Compare() dataframe.DataFrame {
	if c.compare == nil {
		df := analysis.FilterYears(c.Frame(), c.Years.Start, c.Years.End)
		c.compare = &df
	}
	return *c.compare
}

// Year returns the rows of a single compared year.
func (c *Context) Year(y int) dataframe.DataFrame {
	return analysis.FilterYears(c.Compare(), y)
}
