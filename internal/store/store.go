package store

import (
	"errors"
	"fmt"
)

// Table names the five tables the ledger lives in.
type Table string

const (
	TableUsers    Table = "users"
	TableTasks    Table = "tasks"
	TableRewards  Table = "rewards"
	TableHistory  Table = "history"
	TableSettings Table = "settings"
)

// tableColumns is the canonical column set per table, in sheet order.
// Store implementations accept and return exactly these keys (plus the
// implementation-managed "version").
var tableColumns = map[Table][]string{
	TableUsers:    {"name", "role", "pin", "points", "xp", "streak", "last_active"},
	TableTasks:    {"id", "title", "points", "assignee", "frequency", "status", "created_by"},
	TableRewards:  {"id", "title", "cost", "status", "created_by"},
	TableHistory:  {"entry_id", "date", "user", "action", "item", "points"},
	TableSettings: {"key", "value"},
}

// Record is a single row keyed by normalized column name. Every value
// is a string cell; numeric coercion happens in the typed adapters.
type Record map[string]string

// RowRef is an opaque handle to a stored row.
type RowRef int64

// versionColumn is maintained by the store itself and bumped on every
// write to its row.
const versionColumn = "version"

var (
	// ErrNotFound is returned by key lookups that match nothing. It is
	// never swallowed; callers abort the whole operation on it.
	ErrNotFound = errors.New("store: not found")

	// ErrConflict is returned by UpdateRow when the row version moved
	// underneath the caller.
	ErrConflict = errors.New("store: version conflict")

	// ErrUnavailable wraps any backend read/write failure. Operations
	// that see it are aborted and must be retried from scratch.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the table contract the ledger consumes: ordered point-in-
// time reads, appends, key lookups, and cell/row updates. UpdateRow is
// the compare-and-swap path: it applies changes only if the row still
// carries the given version.
type Store interface {
	ReadAll(table Table) ([]Record, error)
	AppendRow(table Table, rec Record) error
	FindRowByKey(table Table, keyColumn, value string) (RowRef, Record, error)
	UpdateCell(table Table, ref RowRef, column, value string) error
	UpdateRow(table Table, ref RowRef, version int64, changes Record) error
}

func columnsFor(table Table) ([]string, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return cols, nil
}

func validColumn(table Table, column string) bool {
	cols, ok := tableColumns[table]
	if !ok {
		return false
	}
	for _, c := range cols {
		if c == column {
			return true
		}
	}
	return false
}

// unavailable tags a backend failure so callers can treat it as
// transient via errors.Is(err, ErrUnavailable).
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrUnavailable, err))
}
