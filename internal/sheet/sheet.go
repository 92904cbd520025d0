// Package sheet is the spreadsheet accessor backed by excelize.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/i474232898/meteo-template/internal/binding"
)

var (
	// ErrSheetNotFound is returned when the workbook has no sheet with the requested name.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrUnreadableWorkbook is returned for files excelize cannot parse, such as legacy .xls.
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
)

// Accessor reads and writes cells of one named sheet.
type Accessor interface {
	binding.SheetReader
	SetCellValue(address, value string, preserveStyle bool) error
}

// Workbook is an opened spreadsheet file.
type Workbook struct {
	file *excelize.File
}

// Open reads a workbook from path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	return &Workbook{file: f}, nil
}

// OpenReader reads a workbook from r.
func OpenReader(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	return &Workbook{file: f}, nil
}

// Sheet returns the named sheet or ErrSheetNotFound.
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return &Sheet{file: w.file, name: name}, nil
}

// WriteTo serializes the workbook.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	return w.file.WriteTo(out)
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	return w.file.SaveAs(path)
}

// Close releases the workbook's temporary resources.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sheet is one worksheet of a Workbook.
type Sheet struct {
	file *excelize.File
	name string
}

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

func (s *Sheet) GetCellValue(address string) (string, error) {
	return s.file.GetCellValue(s.name, address)
}

// SetCellValue writes value as an explicit string. excelize keeps the cell's
// existing style id on write; without preserveStyle the default style is applied.
func (s *Sheet) SetCellValue(address, value string, preserveStyle bool) error {
	if err := s.file.SetCellStr(s.name, address, value); err != nil {
		return fmt.Errorf("failed to write cell %s: %w", address, err)
	}
	if preserveStyle {
		return nil
	}
	return s.file.SetCellStyle(s.name, address, address, 0)
}

// HighestRow returns the number of the last row present in the sheet, counting rows
// that only carry styling. GetRows trims such rows, so the raw row iterator and the
// stored dimension are used instead.
func (s *Sheet) HighestRow() (int, error) {
	rows, err := s.file.Rows(s.name)
	if err != nil {
		return 0, err
	}
	highest := 0
	for rows.Next() {
		highest++
	}
	if err := rows.Error(); err != nil {
		rows.Close()
		return 0, err
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}

	if end := s.dimensionEndRow(); end > highest {
		highest = end
	}
	return highest, nil
}

// dimensionEndRow parses the last row of the sheet's dimension ref ("A1:BV45").
func (s *Sheet) dimensionEndRow() int {
	dim, err := s.file.GetSheetDimension(s.name)
	if err != nil || dim == "" {
		return 0
	}
	ref := dim
	if i := strings.LastIndexByte(dim, ':'); i >= 0 {
		ref = dim[i+1:]
	}
	_, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return 0
	}
	return row
}

// Apply writes every slot of b in order. Writes are not transactional: a failure
// leaves the earlier slots written.
func Apply(a Accessor, b binding.Binding) error {
	for _, slot := range b.Slots() {
		if err := a.SetCellValue(slot.Address, slot.Value, true); err != nil {
			return err
		}
	}
	return nil
}

var _ Accessor = (*Sheet)(nil)
