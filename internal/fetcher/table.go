package fetcher

import "strings"

// Table is a header row plus string-valued data rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Record is one data row keyed by upper-cased column name.
type Record map[string]string

// Records returns the rows keyed by column. Short rows leave trailing
// columns absent; blank cells are dropped so that absence means missing.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = strings.ToUpper(strings.TrimSpace(c))
	}

	out := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(Record, len(cols))
		for i, c := range cols {
			if i >= len(row) || c == "" {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v == "" {
				continue
			}
			rec[c] = v
		}
		out = append(out, rec)
	}
	return out
}

// tableFromRows splits the first row off as the header.
func tableFromRows(rows [][]string) *Table {
	if len(rows) == 0 {
		return &Table{}
	}
	return &Table{Columns: rows[0], Rows: rows[1:]}
}
