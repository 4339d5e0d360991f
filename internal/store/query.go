package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/cesargomez89/weathercache/internal/contract"
	"github.com/cesargomez89/weathercache/internal/domain"
)

// ErrInvalidQuery marks a query naming an unknown table or column, a malformed sort
// order or a selection outside the accepted grammar.
var ErrInvalidQuery = errors.New("invalid query")

// RowSet is an ordered, lazily consumed query result. Callers must Close it
// (All closes it for them).
type RowSet struct {
	rows *sqlx.Rows
	cur  domain.Row
	err  error
}

// Next advances to the next row.
func (rs *RowSet) Next() bool {
	if rs.err != nil || !rs.rows.Next() {
		return false
	}
	row := make(domain.Row)
	if err := rs.rows.MapScan(row); err != nil {
		rs.err = fmt.Errorf("failed to scan row: %w", err)
		return false
	}
	rs.cur = row
	return true
}

// Row is the row Next moved to.
func (rs *RowSet) Row() domain.Row {
	return rs.cur
}

func (rs *RowSet) Columns() ([]string, error) {
	return rs.rows.Columns()
}

func (rs *RowSet) Err() error {
	if rs.err != nil {
		return rs.err
	}
	return rs.rows.Err()
}

func (rs *RowSet) Close() error {
	return rs.rows.Close()
}

// All drains and closes the set.
func (rs *RowSet) All() ([]domain.Row, error) {
	defer rs.Close() //nolint:errcheck // deferred cleanup

	rows := []domain.Row{}
	for rs.Next() {
		rows = append(rows, rs.cur)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Query is the generic single-table read. selection is a WHERE fragment with ?
// placeholders bound to selectionArgs (see selectionClause for what it may contain);
// an empty projection selects every column.
func (db *DB) Query(ctx context.Context, table string, projection []string, selection string, selectionArgs []interface{}, sortOrder string) (*RowSet, error) {
	cols := contract.Columns(table)
	if cols == nil {
		return nil, fmt.Errorf("%w: unknown table %q", ErrInvalidQuery, table)
	}
	allowed := columnSet(table, cols)

	proj, err := projectionClause(projection, allowed)
	if err != nil {
		return nil, err
	}
	where, err := selectionClause(selection, selectionArgs, allowed)
	if err != nil {
		return nil, err
	}
	order, err := orderClause(sortOrder, allowed)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", proj, table)
	if where != "" {
		fmt.Fprintf(&b, " WHERE %s", where)
	}
	if order != "" {
		fmt.Fprintf(&b, " ORDER BY %s", order)
	}

	return db.queryRows(ctx, b.String(), selectionArgs...)
}

// QueryJoin reads weather joined with its location for one location setting and,
// when date is not empty, one day. Rows are ordered by date ascending unless
// sortOrder says otherwise.
func (db *DB) QueryJoin(ctx context.Context, projection []string, locationSetting, date, sortOrder string) (*RowSet, error) {
	allowed := joinColumnSet()

	proj := joinDefaultProjection
	if len(projection) > 0 {
		p, err := projectionClause(projection, allowed)
		if err != nil {
			return nil, err
		}
		proj = p
	}

	order := contract.Qualified(contract.WeatherTable, contract.WeatherDateColumn) + " ASC"
	if strings.TrimSpace(sortOrder) != "" {
		o, err := orderClause(sortOrder, allowed)
		if err != nil {
			return nil, err
		}
		order = o
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM weather INNER JOIN location ON weather.location_id = location._id", proj)
	b.WriteString(" WHERE location.location_setting = ?")
	args := []interface{}{locationSetting}
	if date != "" {
		b.WriteString(" AND weather.date = ?")
		args = append(args, date)
	}
	fmt.Fprintf(&b, " ORDER BY %s", order)

	return db.queryRows(ctx, b.String(), args...)
}

// Delete removes the rows of table matching selection, or every row when selection
// is empty, and returns how many went.
func (db *DB) Delete(ctx context.Context, table, selection string, selectionArgs []interface{}) (int64, error) {
	cols := contract.Columns(table)
	if cols == nil {
		return 0, fmt.Errorf("%w: unknown table %q", ErrInvalidQuery, table)
	}
	where, err := selectionClause(selection, selectionArgs, columnSet(table, cols))
	if err != nil {
		return 0, err
	}
	query := "DELETE FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	result, err := db.ExecContext(ctx, query, selectionArgs...)
	if err != nil {
		if isConstraint(err) {
			return 0, fmt.Errorf("%w: delete from %s: %w", ErrConstraint, table, err)
		}
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return result.RowsAffected()
}

func (db *DB) queryRows(ctx context.Context, query string, args ...interface{}) (*RowSet, error) {
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &RowSet{rows: rows}, nil
}

// The location id is already present as weather.location_id.
var joinDefaultProjection = strings.Join([]string{
	"weather.*",
	"location.location_setting",
	"location.city_name",
	"location.coord_lat",
	"location.coord_long",
}, ", ")

// columnSet maps every accepted spelling of a column (bare and qualified) to its SQL form.
func columnSet(table string, cols []string) map[string]string {
	set := make(map[string]string, len(cols)*2)
	for _, c := range cols {
		q := contract.Qualified(table, c)
		set[c] = q
		set[q] = q
	}
	return set
}

// joinColumnSet resolves bare names to the weather table first, so _id means weather._id.
func joinColumnSet() map[string]string {
	set := columnSet(contract.LocationTable, contract.LocationColumns)
	for k, v := range columnSet(contract.WeatherTable, contract.WeatherColumns) {
		set[k] = v
	}
	delete(set, contract.Qualified(contract.LocationTable, contract.ColumnID))
	return set
}

func projectionClause(projection []string, allowed map[string]string) (string, error) {
	if len(projection) == 0 {
		return "*", nil
	}
	out := make([]string, 0, len(projection))
	seen := make(map[string]bool, len(projection))
	for _, p := range projection {
		col, ok := allowed[strings.TrimSpace(p)]
		if !ok {
			return "", fmt.Errorf("%w: unknown column %q", ErrInvalidQuery, p)
		}
		if seen[col] {
			continue
		}
		seen[col] = true
		out = append(out, col)
	}
	return strings.Join(out, ", "), nil
}

// orderClause accepts "col [ASC|DESC], ..." over known columns only.
func orderClause(sortOrder string, allowed map[string]string) (string, error) {
	if strings.TrimSpace(sortOrder) == "" {
		return "", nil
	}
	terms := strings.Split(sortOrder, ",")
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		fields := strings.Fields(term)
		if len(fields) == 0 || len(fields) > 2 {
			return "", fmt.Errorf("%w: invalid sort order %q", ErrInvalidQuery, sortOrder)
		}
		col, ok := allowed[fields[0]]
		if !ok {
			return "", fmt.Errorf("%w: unknown sort column %q", ErrInvalidQuery, fields[0])
		}
		dir := "ASC"
		if len(fields) == 2 {
			dir = strings.ToUpper(fields[1])
			if dir != "ASC" && dir != "DESC" {
				return "", fmt.Errorf("%w: invalid sort direction %q", ErrInvalidQuery, fields[1])
			}
		}
		out = append(out, col+" "+dir)
	}
	return strings.Join(out, ", "), nil
}
