// Package dataio loads tabular sensor exports and converts them to and from
// model.Series.
package dataio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oasci/vaxstats/common"
	"github.com/xuri/excelize/v2"
)

// FileType names a supported on-disk table format.
type FileType string

const (
	CSVFile   FileType = "csv"
	ExcelFile FileType = "excel"
)

// Table is a header plus string cells. Every row has len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of name in the header, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// DetectFileType guesses the format from the file extension.
func DetectFileType(path string) (FileType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSVFile, nil
	case ".xls", ".xlsx", ".xlsm":
		return ExcelFile, nil
	}
	return "", fmt.Errorf("could not determine file type of %q: %w", path, common.ErrorInvalidValue)
}

// Load reads a table from path. An empty fileType is detected from the
// extension.
func Load(path string, fileType FileType) (*Table, error) {
	if fileType == "" {
		var err error
		if fileType, err = DetectFileType(path); err != nil {
			return nil, err
		}
	}

	switch fileType {
	case CSVFile:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return ReadCSV(f)
	case ExcelFile:
		return readExcel(path)
	}
	return nil, fmt.Errorf("file type %q is not supported: %w", string(fileType), common.ErrorInvalidValue)
}

// ReadCSV reads a headed CSV table.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return newTable(records), nil
}

func readExcel(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return newTable(rows), nil
}

// newTable pads or trims every row to the header width.
func newTable(records [][]string) *Table {
	if len(records) == 0 {
		return &Table{}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(header))
		copy(row, rec)
		rows = append(rows, row)
	}
	return &Table{Header: header, Rows: rows}
}

// WriteCSV writes the table with its header.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// Clean drops rows whose cell at colIdx is blank.
func Clean(t *Table, colIdx int) (*Table, error) {
	if colIdx < 0 || colIdx >= len(t.Header) {
		return nil, fmt.Errorf("column index %d out of range [0, %d): %w", colIdx, len(t.Header),
			common.ErrorInvalidValue)
	}
	res := &Table{Header: append([]string(nil), t.Header...)}
	for _, row := range t.Rows {
		if strings.TrimSpace(row[colIdx]) == "" {
			continue
		}
		res.Rows = append(res.Rows, append([]string(nil), row...))
	}
	return res, nil
}
