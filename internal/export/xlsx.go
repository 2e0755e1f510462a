package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes one rendered table as a single-sheet workbook.
func WriteXLSX(path, sheet string, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := writeRow(f, sheet, 1, table.Header); err != nil {
		return err
	}
	for i, row := range table.Rows {
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []string) error {
	for col, value := range cells {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell %d,%d: %w", col+1, row, err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("cell %s: %w", cell, err)
		}
	}
	return nil
}
