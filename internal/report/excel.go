package report

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/embo-press/matchpub/internal/submission"
)

// LoadGrid reads the first worksheet of an Excel workbook into a cell
// grid. Every cell is rendered to its displayed string value; the
// parser is responsible for interpreting them.
func LoadGrid(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: workbook has no worksheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet %q: %w", path, sheets[0], err)
	}
	return rows, nil
}

// ParseFile loads an Excel report and parses it with the given spec.
// Structural errors are annotated with the file path for diagnosis.
func (p *Parser) ParseFile(path string) (Metadata, []submission.Submission, error) {
	grid, err := LoadGrid(path)
	if err != nil {
		return Metadata{}, nil, err
	}

	meta, subs, err := p.Parse(grid)
	if err != nil {
		var headerErr *HeaderNotFoundError
		if errors.As(err, &headerErr) {
			headerErr.Path = path
			return Metadata{}, nil, headerErr
		}
		return Metadata{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return meta, subs, nil
}
