package fetcher

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// ReadCSV parses a headered CSV document into a Table. Rows may have a
// variable number of fields.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read rows")
	}
	if len(rows) == 0 {
		return nil, eris.New("csv: missing header row")
	}

	// Strip a UTF-8 BOM from the first header cell.
	if len(rows[0]) > 0 && len(rows[0][0]) >= 3 && rows[0][0][:3] == "\xef\xbb\xbf" {
		rows[0][0] = rows[0][0][3:]
	}
	return tableFromRows(rows), nil
}
