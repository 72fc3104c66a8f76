package sales

import "strings"

// Table is a schema-on-read tabular source: a header row plus string cells.
// Loaders stringify whatever the upstream provides (CSV, XLSX, Sheets values).
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable builds a table with trimmed header names.
func NewTable(header []string, rows [][]string) *Table {
	h := make([]string, len(header))
	for i, name := range header {
		h[i] = strings.TrimSpace(name)
	}
	return &Table{Header: h, Rows: rows}
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the index of the first candidate present in the header, or -1.
// Candidates are tried in order; each is matched exactly (after trimming) before
// falling back to a loose match that ignores case, spaces and punctuation.
func (t *Table) Column(candidates ...string) int {
	if t == nil {
		return -1
	}
	for _, name := range candidates {
		want := strings.TrimSpace(name)
		for i, h := range t.Header {
			if strings.TrimSpace(h) == want {
				return i
			}
		}
		loose := normalizeColumnName(want)
		if loose == "" {
			continue
		}
		for i, h := range t.Header {
			if normalizeColumnName(h) == loose {
				return i
			}
		}
	}
	return -1
}

// Cell returns the trimmed value of row at idx, or "" when out of range.
func (t *Table) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ConcatTables stacks tables that may have different headers. Columns are
// unioned by trimmed name in first-seen order; missing cells are empty.
func ConcatTables(tables ...*Table) *Table {
	var header []string
	index := make(map[string]int)
	total := 0
	for _, t := range tables {
		if t == nil {
			continue
		}
		total += len(t.Rows)
		for _, h := range t.Header {
			name := strings.TrimSpace(h)
			if _, ok := index[name]; ok {
				continue
			}
			index[name] = len(header)
			header = append(header, name)
		}
	}

	rows := make([][]string, 0, total)
	for _, t := range tables {
		if t == nil {
			continue
		}
		mapping := make([]int, len(t.Header))
		for i, h := range t.Header {
			mapping[i] = index[strings.TrimSpace(h)]
		}
		for _, src := range t.Rows {
			dst := make([]string, len(header))
			for i, v := range src {
				if i < len(mapping) {
					dst[mapping[i]] = v
				}
			}
			rows = append(rows, dst)
		}
	}

	return &Table{Header: header, Rows: rows}
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "", "(", "", ")", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}
