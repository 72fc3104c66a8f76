package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/xuri/excelize/v2"
)

// Supported reports whether a file name has a decodable extension.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	default:
		return false
	}
}

// DecodeFile turns a downloaded CSV or XLSX file into a table.
func DecodeFile(name string, data []byte) (*sales.Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return DecodeCSV(bytes.NewReader(data))
	case ".xlsx":
		return DecodeXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported file extension for %s", name)
	}
}

// DecodeCSV reads a CSV with a header row. A UTF-8 BOM is dropped and ragged
// rows are accepted.
func DecodeCSV(r io.Reader) (*sales.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return sales.NewTable(nil, nil), nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return sales.NewTable(header, records[1:]), nil
}

// DecodeXLSX reads the first sheet of an XLSX workbook. Cells keep their
// formatted text, except date-formatted cells which become "2006-01-02 15:04:05"
// timestamps so their layout does not depend on the workbook locale.
func DecodeXLSX(r io.Reader) (*sales.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read raw rows from sheet %s: %w", sheet, err)
	}

	dates := newDateCells(f, sheet)
	for i, record := range records {
		if i >= len(raw) {
			break
		}
		for j := range record {
			if j >= len(raw[i]) {
				break
			}
			if ts, ok := dates.timestamp(i, j, raw[i][j]); ok {
				record[j] = ts
			}
		}
	}

	if len(records) == 0 {
		return sales.NewTable(nil, nil), nil
	}
	return sales.NewTable(records[0], dropBlankRows(records[1:])), nil
}

// XLSXTimestampLayout is the text form of date-formatted XLSX cells.
const XLSXTimestampLayout = "2006-01-02 15:04:05"

// dateCells recognizes date-formatted cells of one sheet, caching the
// verdict per style.
type dateCells struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	styles   map[int]bool
}

func newDateCells(f *excelize.File, sheet string) *dateCells {
	d := &dateCells{f: f, sheet: sheet, styles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

// timestamp converts the raw serial of the cell at zero-based (row, col)
// when the cell carries a date number format.
func (d *dateCells) timestamp(row, col int, raw string) (string, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial < 0 {
		return "", false
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return "", false
	}
	styleID, err := d.f.GetCellStyle(d.sheet, cell)
	if err != nil || styleID == 0 {
		return "", false
	}
	isDate, ok := d.styles[styleID]
	if !ok {
		style, err := d.f.GetStyle(styleID)
		isDate = err == nil && isDateStyle(style)
		d.styles[styleID] = isDate
	}
	if !isDate {
		return "", false
	}
	ts, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return "", false
	}
	return ts.Round(time.Second).Format(XLSXTimestampLayout), true
}

func isDateStyle(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	switch n := style.NumFmt; {
	case n >= 14 && n <= 22, n >= 27 && n <= 36, n >= 45 && n <= 47, n >= 50 && n <= 58, n >= 71 && n <= 81:
		return true
	default:
		return false
	}
}

// isDateFormatCode reports whether a custom number format shows a date or
// time. Quoted literals, bracketed sections and escaped characters are ignored.
func isDateFormatCode(code string) bool {
	var quoted, bracket, escaped bool
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = r != '"'
		case bracket:
			bracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = true
		case r == '[':
			bracket = true
		case r == 'y', r == 'd', r == 'h', r == 's':
			return true
		}
	}
	return false
}

// ValuesToTable converts Sheets API values into a table.
func ValuesToTable(values [][]interface{}) *sales.Table {
	if len(values) == 0 {
		return sales.NewTable(nil, nil)
	}

	toStrings := func(row []interface{}) []string {
		out := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				out[i] = fmt.Sprint(v)
			}
		}
		return out
	}

	rows := make([][]string, 0, len(values)-1)
	for _, row := range values[1:] {
		rows = append(rows, toStrings(row))
	}
	return sales.NewTable(toStrings(values[0]), dropBlankRows(rows))
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
