// Package export renders report rows as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of xlsx workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is one worksheet: a heading row followed by data rows.
type Sheet struct {
	Name     string
	Headings []string
	Rows     [][]any
}

// Build renders sheets into a new workbook. The first sheet replaces the default one.
func Build(sheets ...Sheet) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("export: no sheets")
	}

	f := excelize.NewFile()
	const defaultSheet = "Sheet1"

	headStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("export: heading style: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sh.Name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("export: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("export: new sheet %q: %w", sh.Name, err)
		}

		if err := writeSheet(f, sh, headStyle); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, sh Sheet, headStyle int) error {
	headings := make([]any, len(sh.Headings))
	for i, h := range sh.Headings {
		headings[i] = h
	}
	if err := f.SetSheetRow(sh.Name, "A1", &headings); err != nil {
		return fmt.Errorf("export: %s headings: %w", sh.Name, err)
	}
	if len(sh.Headings) > 0 {
		last, err := excelize.CoordinatesToCellName(len(sh.Headings), 1)
		if err != nil {
			return fmt.Errorf("export: %s headings: %w", sh.Name, err)
		}
		if err := f.SetCellStyle(sh.Name, "A1", last, headStyle); err != nil {
			return fmt.Errorf("export: %s heading style: %w", sh.Name, err)
		}
	}

	for i, row := range sh.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: %s row %d: %w", sh.Name, i, err)
		}
		if err := f.SetSheetRow(sh.Name, cell, &row); err != nil {
			return fmt.Errorf("export: %s row %d: %w", sh.Name, i, err)
		}
	}
	return nil
}

// Write renders sheets and streams the workbook to w.
func Write(w io.Writer, sheets ...Sheet) error {
	f, err := Build(sheets...)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}
