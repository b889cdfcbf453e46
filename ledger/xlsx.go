package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXStore is a ledger kept in a local workbook. A missing workbook, a
// missing sheet and an empty sheet all start with the header row.
type XLSXStore struct {
	path   string
	sheet  string
	header []string
}

// NewXLSXStore returns a store over the sheet named in rng (Sheet1 when the
// range names none).
func NewXLSXStore(path, rng string, header []string) *XLSXStore {
	sheet := TabTitle(rng)
	if sheet == "" {
		sheet = defaultSheet
	}
	return &XLSXStore{path: path, sheet: sheet, header: header}
}

func (s *XLSXStore) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	switch {
	case err == nil:
		if idx, _ := f.GetSheetIndex(s.sheet); idx < 0 {
			if _, err := f.NewSheet(s.sheet); err != nil {
				f.Close()
				return nil, err
			}
		}
	case errors.Is(err, fs.ErrNotExist):
		f = excelize.NewFile()
		if s.sheet != defaultSheet {
			if err := f.SetSheetName(defaultSheet, s.sheet); err != nil {
				f.Close()
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}

	// An empty sheet gets the header so the first data row is never read as it.
	raw, err := f.GetRows(s.sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read %s: %w", s.sheet, err)
	}
	if len(raw) == 0 {
		if err := s.writeRow(f, 1, s.header); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func (s *XLSXStore) Rows(_ context.Context) ([][]string, error) {
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.rows(f)
}

func (s *XLSXStore) rows(f *excelize.File) ([][]string, error) {
	raw, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.sheet, err)
	}
	rows := make([][]string, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, pad(r))
	}
	return rows, nil
}

func (s *XLSXStore) Append(_ context.Context, rows [][]string) error {
	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	existing, err := s.rows(f)
	if err != nil {
		return err
	}
	next := len(existing) + 1
	for i, row := range rows {
		if err := s.writeRow(f, next+i, row); err != nil {
			return err
		}
	}
	return f.SaveAs(s.path)
}

func (s *XLSXStore) SortByDate(_ context.Context) error {
	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := s.rows(f)
	if err != nil {
		return err
	}
	data := dataRows(rows)
	SortRows(data)
	for i, row := range data {
		if err := s.writeRow(f, HeaderRows+1+i, row); err != nil {
			return err
		}
	}
	return f.SaveAs(s.path)
}

func (s *XLSXStore) writeRow(f *excelize.File, n int, row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	padded := pad(row)
	if err := f.SetSheetRow(s.sheet, cell, &padded); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}
