package analysis

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one aggregate table destined for the summary workbook.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// CountsSheet builds a two-column sheet from counts.
func CountsSheet(name, keyHeader string, counts []Count) Sheet {
	s := Sheet{Name: name, Header: []string{keyHeader, "fatalities"}}
	for _, c := range counts {
		s.Rows = append(s.Rows, []any{c.Key, c.Value})
	}
	return s
}

// WriteWorkbook writes one worksheet per sheet to an XLSX file at path.
// Sheet names longer than Excel's 31 character limit are truncated.
func WriteWorkbook(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return errors.New("no sheets to write")
	}
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	seen := map[string]bool{}
	for i, s := range sheets {
		name := s.Name
		if len(name) > 31 {
			name = name[:31]
		}
		if seen[name] {
			return fmt.Errorf("duplicate sheet name %q", name)
		}
		seen[name] = true

		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %s: %w", name, err)
		}

		header := make([]any, len(s.Header))
		for j, h := range s.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("write header %s: %w", name, err)
		}
		if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
			return fmt.Errorf("style header %s: %w", name, err)
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			vals := row
			if err := f.SetSheetRow(name, cell, &vals); err != nil {
				return fmt.Errorf("write row %s:%d: %w", name, r+2, err)
			}
		}
	}
	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
