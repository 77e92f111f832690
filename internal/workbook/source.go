package workbook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned by a Source when the requested sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Source reads the raw cell text of a sheet, header row first.
type Source interface {
	Rows(ctx context.Context, sheet string) ([][]string, error)
	Close() error
}

// ExcelSource reads sheets from an .xlsx file.
type ExcelSource struct {
	path string
	file *excelize.File
}

// OpenExcel opens the workbook at path.
func OpenExcel(path string) (*ExcelSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &ExcelSource{path: path, file: f}, nil
}

// Rows returns every row of the sheet with raw (unformatted) cell values, so
// date cells come back as Excel serial numbers.
func (s *ExcelSource) Rows(ctx context.Context, sheet string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, ok := s.resolveSheet(sheet)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrSheetNotFound, sheet, s.path)
	}

	rows, err := s.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	return rows, nil
}

// resolveSheet matches the sheet name exactly first, then case-insensitively.
func (s *ExcelSource) resolveSheet(sheet string) (string, bool) {
	names := s.file.GetSheetList()
	for _, name := range names {
		if name == sheet {
			return name, true
		}
	}
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), sheet) {
			return name, true
		}
	}
	return "", false
}

// Close releases the workbook.
func (s *ExcelSource) Close() error {
	return s.file.Close()
}
