package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Loader reads one tabular file format into a dataframe.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt LoadOptions) (dataframe.DataFrame, error)
}

// LoadOptions tunes how a data file is read.
type LoadOptions struct {
	// Delimiter for delimited text. If 0, it is sniffed from the extension and header.
	Delimiter rune
	// Sheet selects an XLSX worksheet; empty means the first one.
	Sheet string
	// Required columns; Load fails with *MissingColumnsError when any is absent.
	Required []string
}

// NaNValues are the cell values treated as missing.
var NaNValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "<nil>"}

// columnTypes fixes the integer columns; everything else loads as string.
var columnTypes = map[string]series.Type{
	"year":        series.Int,
	"age":         series.Int,
	"speed_limit": series.Int,
}

var registry []Loader

// Register adds a loader implementation to the registry. Earlier loaders win.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

// Load selects a loader by filename and returns the raw table.
func Load(path string, opt LoadOptions) (dataframe.DataFrame, error) {
	for _, l := range registry {
		if !l.CanLoad(path) {
			continue
		}
		df, err := l.Load(path, opt)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		if err := requireColumns(df, opt.Required); err != nil {
			return dataframe.DataFrame{}, err
		}
		return df, nil
	}
	return dataframe.DataFrame{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
}

func requireColumns(df dataframe.DataFrame, required []string) error {
	have := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		have[n] = true
	}
	var missing []string
	for _, c := range required {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

func loadOptions(delim rune) []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(columnTypes),
		dataframe.NaNValues(NaNValues),
		dataframe.WithDelimiter(delim),
	}
}

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv", ".txt":
		return true
	}
	return false
}

func (csvLoader) Load(path string, opt LoadOptions) (dataframe.DataFrame, error) {
	delim := opt.Delimiter
	if delim == 0 {
		d, err := sniffDelimiter(path)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		delim = d
	}
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, loadOptions(delim)...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read csv %s: %w", filepath.Base(path), df.Err)
	}
	return df, nil
}

// sniffDelimiter uses the extension first, then the most frequent of
// ',', ';' and tab in the header line.
func sniffDelimiter(path string) (rune, error) {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t', nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, fmt.Errorf("read header: %w", err)
		}
		return ',', nil
	}
	header := sc.Text()
	best, bestN := ',', strings.Count(header, ",")
	for _, c := range []rune{';', '\t'} {
		if n := strings.Count(header, string(c)); n > bestN {
			best, bestN = c, n
		}
	}
	return best, nil
}

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxLoader) Load(path string, opt LoadOptions) (dataframe.DataFrame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return dataframe.DataFrame{}, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				opt.Sheet, filepath.Base(path), strings.Join(sheets, ", "))
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %s is empty", sheet)
	}
	// excelize trims trailing empty cells; pad to the header width
	width := len(rows[0])
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		if len(r) > width {
			r = r[:width]
		}
		rec := make([]string, width)
		copy(rec, r)
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		records = append(records, rec)
	}

	df := dataframe.LoadRecords(records, loadOptions(',')...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load sheet %s: %w", sheet, df.Err)
	}
	return df, nil
}
