// Package xlsx reads the travel spend dataset from an Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"io/fs"

	"github.com/xuri/excelize/v2"

	"travelspend/internal/core"
	"travelspend/internal/dataset"
)

// Source reads one sheet of a workbook on disk. The first row holds the
// column headers.
type Source struct {
	path  string
	sheet string
}

var _ dataset.Source = (*Source)(nil)

// New returns a source for path. An empty sheet selects the first sheet in
// the workbook.
func New(path, sheet string) *Source {
	return &Source{path: path, sheet: sheet}
}

func (s *Source) Name() string { return "xlsx:" + s.path }

// ReadTable opens the workbook and parses the selected sheet.
func (s *Source) ReadTable(ctx context.Context) (core.Table, error) {
	if err := ctx.Err(); err != nil {
		return core.Table{}, err
	}
	header, rows, err := s.readRows()
	if err != nil {
		return core.Table{}, err
	}
	return core.ParseTable(header, rows)
}

func (s *Source) readRows() ([]string, [][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, dataset.NotFound(s.Name(), err)
		}
		return nil, nil, dataset.Unavailable(s.Name(), err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, nil, dataset.Unavailable(s.Name(), errors.New("workbook has no sheets"))
		}
		sheet = list[0]
	}

	// Raw values keep number formats such as "₹#,##0" out of the spend column.
	all, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, dataset.Unavailable(s.Name(), err)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}
