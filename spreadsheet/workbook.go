package spreadsheet

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Aashish23092/lazy-search/dto"
	"github.com/xuri/excelize/v2"
)

// Columns names the header cells the workbook must carry.
type Columns struct {
	Name   string
	Number string
}

// Workbook is a roster sheet with a name column and a number column.
// Row 0 is the header row.
type Workbook struct {
	file      *excelize.File
	sheet     string
	rows      [][]string
	nameCol   int
	numberCol int
}

// Open loads sheet from the workbook at path; an empty sheet selects the
// first one.
func Open(path, sheet string, cols Columns) (*Workbook, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", dto.ErrUnsupportedWorkbook, filepath.Ext(path))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	wb, err := load(f, sheet, cols)
	if err != nil {
		f.Close()
		return nil, err
	}
	return wb, nil
}

func load(f *excelize.File, sheet string, cols Columns) (*Workbook, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", dto.ErrMissingColumn)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", dto.ErrMissingColumn, sheet)
	}

	nameCol := headerIndex(rows[0], cols.Name)
	if nameCol < 0 {
		return nil, fmt.Errorf("%w: column %q", dto.ErrMissingColumn, cols.Name)
	}
	numberCol := headerIndex(rows[0], cols.Number)
	if numberCol < 0 {
		return nil, fmt.Errorf("%w: column %q", dto.ErrMissingColumn, cols.Number)
	}

	return &Workbook{
		file:      f,
		sheet:     sheet,
		rows:      rows,
		nameCol:   nameCol,
		numberCol: numberCol,
	}, nil
}

func headerIndex(header []string, want string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(want)) {
			return i
		}
	}
	return -1
}

// Names returns the name cell of every row, aligned with sheet rows. The
// header row is returned as "".
func (w *Workbook) Names() []string {
	names := make([]string, len(w.rows))
	for i := 1; i < len(w.rows); i++ {
		if w.nameCol < len(w.rows[i]) {
			names[i] = w.rows[i][w.nameCol]
		}
	}
	return names
}

// SetNumbers writes numbers[name] into the number column of every data row
// whose name has an entry. Rows without an entry are left as they are.
func (w *Workbook) SetNumbers(numbers map[string]string) (int, error) {
	written := 0
	for i, name := range w.Names() {
		if i == 0 {
			continue
		}
		n, ok := numbers[name]
		if !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(w.numberCol+1, i+1)
		if err != nil {
			return written, err
		}
		if err := w.file.SetCellValue(w.sheet, cell, n); err != nil {
			return written, fmt.Errorf("set %s: %w", cell, err)
		}
		written++
	}
	return written, nil
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// Supported reports whether path names an OOXML workbook.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// OutputPath derives the updated workbook path: roster.xlsx becomes
// roster_updated.xlsx.
func OutputPath(in string) string {
	ext := filepath.Ext(in)
	switch strings.ToLower(ext) {
	case ".xlsx", ".xlsm", ".xls":
		return strings.TrimSuffix(in, ext) + "_updated" + ext
	}
	return filepath.Join(filepath.Dir(in), "updated_"+filepath.Base(in))
}
