package fetcher

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// validateTable rejects table names that are not plain (schema-qualified)
// identifiers, since they are interpolated into the query.
func validateTable(table string) error {
	if !tableNameRe.MatchString(table) {
		return eris.Errorf("fetcher: invalid table name %q", table)
	}
	return nil
}

// ReadSQLiteTable reads every row of table from the SQLite database at path.
func ReadSQLiteTable(ctx context.Context, path, table string) (*Table, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	defer db.Close() //nolint:errcheck

	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", table))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query %s", table)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: columns")
	}

	t := &Table{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		t.Rows = append(t.Rows, stringify(vals))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate rows")
	}
	return t, nil
}

// Pool is the subset of a pgx pool used to read Postgres tables.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ReadPostgresTable reads every row of table through pool.
func ReadPostgresTable(ctx context.Context, pool Pool, table string) (*Table, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, fmt.Sprintf("SELECT * FROM %s", table))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", table)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	t := &Table{Columns: make([]string, len(fields))}
	for i, fd := range fields {
		t.Columns[i] = fd.Name
	}

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "postgres: read row values")
		}
		t.Rows = append(t.Rows, stringify(vals))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate rows")
	}
	return t, nil
}

func stringify(vals []any) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		switch x := v.(type) {
		case nil:
		case string:
			out[i] = x
		case []byte:
			out[i] = string(x)
		case int64:
			out[i] = strconv.FormatInt(x, 10)
		case int32:
			out[i] = strconv.FormatInt(int64(x), 10)
		case int16:
			out[i] = strconv.FormatInt(int64(x), 10)
		case float64:
			out[i] = formatFloat(x)
		case float32:
			out[i] = formatFloat(float64(x))
		case pgtype.Numeric:
			if f, err := x.Float64Value(); err == nil && f.Valid {
				out[i] = formatFloat(f.Float64)
			}
		case pgtype.Float8:
			if x.Valid {
				out[i] = formatFloat(x.Float64)
			}
		case pgtype.Int4:
			if x.Valid {
				out[i] = strconv.FormatInt(int64(x.Int32), 10)
			}
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}

// formatFloat renders f for attribute parsing. NaN and infinities are
// treated as missing.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
