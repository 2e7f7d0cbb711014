package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// SQLite implements Store on a *sql.DB opened by the database package.
// Each table holds text cells in the canonical column layout plus a
// version integer; rowid is the RowRef.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) ReadAll(table Table) ([]Record, error) {
	cols, err := columnsFor(table)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + strings.Join(cols, ", ") + `, version FROM ` + string(table) + ` ORDER BY rowid ASC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, unavailable("read "+string(table), err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows, cols)
		if err != nil {
			return nil, unavailable("scan "+string(table), err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("read "+string(table), err)
	}
	return out, nil
}

func (s *SQLite) AppendRow(table Table, rec Record) error {
	cols, err := columnsFor(table)
	if err != nil {
		return err
	}

	args := make([]any, 0, len(cols)+1)
	placeholders := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		args = append(args, rec[c])
		placeholders = append(placeholders, "?")
	}
	args = append(args, 0)
	placeholders = append(placeholders, "?")

	query := `INSERT INTO ` + string(table) +
		` (` + strings.Join(cols, ", ") + `, version) VALUES (` + strings.Join(placeholders, ", ") + `)`
	if _, err := s.db.Exec(query, args...); err != nil {
		return unavailable("append "+string(table), err)
	}
	return nil
}

func (s *SQLite) FindRowByKey(table Table, keyColumn, value string) (RowRef, Record, error) {
	cols, err := columnsFor(table)
	if err != nil {
		return 0, nil, err
	}
	key := NormalizeColumn(keyColumn)
	if !validColumn(table, key) {
		return 0, nil, fmt.Errorf("unknown column %q in table %q", keyColumn, table)
	}

	query := `SELECT rowid, ` + strings.Join(cols, ", ") + `, version FROM ` + string(table) +
		` WHERE ` + key + ` = ? ORDER BY rowid ASC LIMIT 1`
	row := s.db.QueryRow(query, value)

	dest := make([]sql.NullString, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	var ref int64
	args = append(args, &ref)
	for i := range dest {
		args = append(args, &dest[i])
	}
	if err := row.Scan(args...); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil, fmt.Errorf("find %s by %s=%q: %w", table, key, value, ErrNotFound)
		}
		return 0, nil, unavailable("find "+string(table), err)
	}
	return RowRef(ref), buildRecord(cols, dest), nil
}

func (s *SQLite) UpdateCell(table Table, ref RowRef, column, value string) error {
	col := NormalizeColumn(column)
	if !validColumn(table, col) {
		return fmt.Errorf("unknown column %q in table %q", column, table)
	}

	query := `UPDATE ` + string(table) + ` SET ` + col + ` = ?, version = version + 1 WHERE rowid = ?`
	result, err := s.db.Exec(query, value, int64(ref))
	if err != nil {
		return unavailable("update "+string(table), err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return unavailable("update "+string(table), err)
	}
	if n == 0 {
		return fmt.Errorf("update %s row %d: %w", table, ref, ErrNotFound)
	}
	return nil
}

func (s *SQLite) UpdateRow(table Table, ref RowRef, version int64, changes Record) error {
	sets := make([]string, 0, len(changes)+1)
	args := make([]any, 0, len(changes)+2)
	for _, c := range tableColumns[table] {
		v, ok := changes[c]
		if !ok {
			continue
		}
		sets = append(sets, c+" = ?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		return fmt.Errorf("update %s row %d: no recognized columns", table, ref)
	}
	sets = append(sets, "version = version + 1")
	args = append(args, int64(ref), version)

	query := `UPDATE ` + string(table) + ` SET ` + strings.Join(sets, ", ") +
		` WHERE rowid = ? AND version = ?`
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return unavailable("update "+string(table), err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return unavailable("update "+string(table), err)
	}
	if n > 0 {
		return nil
	}

	// Distinguish a stale version from a missing row.
	var exists int
	err = s.db.QueryRow(`SELECT 1 FROM `+string(table)+` WHERE rowid = ?`, int64(ref)).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("update %s row %d: %w", table, ref, ErrNotFound)
	}
	if err != nil {
		return unavailable("update "+string(table), err)
	}
	return fmt.Errorf("update %s row %d at version %d: %w", table, ref, version, ErrConflict)
}

func scanRecord(rows *sql.Rows, cols []string) (Record, error) {
	dest := make([]sql.NullString, len(cols)+1)
	args := make([]any, len(dest))
	for i := range dest {
		args[i] = &dest[i]
	}
	if err := rows.Scan(args...); err != nil {
		return nil, err
	}
	return buildRecord(cols, dest), nil
}

// buildRecord converts scanned cells to a Record. NULL cells become
// empty strings, which is also how short sheet rows pad out.
func buildRecord(cols []string, dest []sql.NullString) Record {
	rec := make(Record, len(cols)+1)
	for i, c := range cols {
		if dest[i].Valid {
			rec[c] = dest[i].String
		} else {
			rec[c] = ""
		}
	}
	v := dest[len(cols)]
	if v.Valid {
		rec[versionColumn] = v.String
	} else {
		rec[versionColumn] = "0"
	}
	return rec
}

func recordVersion(rec Record) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(rec[versionColumn]), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
