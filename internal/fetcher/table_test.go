package fetcher

import (
	"archive/zip"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestTableRecords(t *testing.T) {
	tbl := &Table{
		Columns: []string{"year", " Race ", "burden_30"},
		Rows: [][]string{
			{"2019", "All", "45.1"},
			{"2020", "Asian", ""},
			{"2021"},
		},
	}
	recs := tbl.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, Record{"YEAR": "2019", "RACE": "All", "BURDEN_30": "45.1"}, recs[0])
	assert.Equal(t, Record{"YEAR": "2020", "RACE": "Asian"}, recs[1])
	assert.Equal(t, Record{"YEAR": "2021"}, recs[2])

	var nilTable *Table
	assert.Nil(t, nilTable.Records())
}

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("\xef\xbb\xbfyear,bracket,share\n2019,<$25k,12.5\n2019,$100k+\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "bracket", "share"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"2019", "$100k+"}, tbl.Rows[1])
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorContains(t, err, "missing header")
}

func TestReadCSV_Malformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n\"unterminated,1\n"))
	assert.Error(t, err)
}

func createTestXLSX(t *testing.T, sheets map[string][][]string) []byte {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestReadXLSX(t *testing.T) {
	data := createTestXLSX(t, map[string][][]string{
		"income": {
			{"year", "bracket", "share"},
			{"2021", "<$25k", "14.2"},
		},
	})

	tbl, err := ReadXLSX(data, "income")
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "bracket", "share"}, tbl.Columns)
	assert.Equal(t, [][]string{{"2021", "<$25k", "14.2"}}, tbl.Rows)

	tbl, err = ReadXLSX(data, "")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestReadXLSX_MissingSheet(t *testing.T) {
	data := createTestXLSX(t, map[string][][]string{"a": {{"x"}}})
	_, err := ReadXLSX(data, "b")
	assert.ErrorContains(t, err, `sheet "b" not found`)
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	_, err := ReadXLSX([]byte("not a zip"), "")
	assert.Error(t, err)
}

func TestReadSQLiteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burden.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE burden (year INTEGER, race TEXT, burden_30 REAL, burden_50 REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO burden VALUES (2019, 'All', 44.5, NULL), (2020, 'All', 46, 21.25)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	tbl, err := ReadSQLiteTable(context.Background(), path, "burden")
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "race", "burden_30", "burden_50"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"2019", "All", "44.5", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"2020", "All", "46", "21.25"}, tbl.Rows[1])
}

func TestReadSQLiteTable_InvalidName(t *testing.T) {
	_, err := ReadSQLiteTable(context.Background(), "x.sqlite", "burden; DROP TABLE x")
	assert.ErrorContains(t, err, "invalid table name")
}

func TestReadPostgresTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"year", "bracket", "share"}).
		AddRow(int64(2021), "<$25k", 14.5).
		AddRow(int64(2021), "$100k+", nil)
	mock.ExpectQuery("SELECT \\* FROM housing.income").WillReturnRows(rows)

	tbl, err := ReadPostgresTable(context.Background(), mock, "housing.income")
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "bracket", "share"}, tbl.Columns)
	assert.Equal(t, [][]string{{"2021", "<$25k", "14.5"}, {"2021", "$100k+", ""}}, tbl.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadPostgresTable_NumericColumns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	var share pgtype.Numeric
	require.NoError(t, share.Scan("42.5"))

	rows := pgxmock.NewRows([]string{"year", "share", "burden", "rank"}).
		AddRow(int32(2019), share, pgtype.Float8{Float64: 31.25, Valid: true}, int16(3)).
		AddRow(int32(2020), pgtype.Numeric{NaN: true, Valid: true}, pgtype.Float8{}, int16(4))
	mock.ExpectQuery("SELECT \\* FROM housing.income").WillReturnRows(rows)

	tbl, err := ReadPostgresTable(context.Background(), mock, "housing.income")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2019", "42.5", "31.25", "3"}, {"2020", "", "", "4"}}, tbl.Rows)
	assert.Equal(t, "42.5", tbl.Records()[0]["SHARE"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadPostgresTable_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	_, err = ReadPostgresTable(context.Background(), mock, "income")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestExtractZIP(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "zones.zip")
	zf, err := os.Create(zipPath)
	require.NoError(t, err)
	w := zip.NewWriter(zf)
	for _, name := range []string{"mha/zones.shp", "mha/zones.dbf"} {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, zf.Close())

	dest := filepath.Join(dir, "out")
	paths, err := ExtractZIP(zipPath, dest)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	shp, ok := FindByExt(paths, ".SHP")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dest, "mha", "zones.shp"), shp)

	_, ok = FindByExt(paths, ".prj")
	assert.False(t, ok)
}

func TestExtractZIP_ZipSlip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	zf, err := os.Create(zipPath)
	require.NoError(t, err)
	w := zip.NewWriter(zf)
	fw, err := w.Create("../evil.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("x"))
	require.NoError(t, w.Close())
	require.NoError(t, zf.Close())

	_, err = ExtractZIP(zipPath, filepath.Join(dir, "out"))
	assert.ErrorContains(t, err, "zip slip")
}
