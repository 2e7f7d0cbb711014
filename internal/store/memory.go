package store

import (
	"fmt"
	"strconv"
	"sync"
)

// Memory is an in-memory Store used by tests and as a stand-in when no
// database is wired up. Semantics match SQLite: ordered reads,
// store-managed versions, CAS on UpdateRow.
type Memory struct {
	mu     sync.Mutex
	nextID RowRef
	tables map[Table][]*memRow
}

type memRow struct {
	ref     RowRef
	cells   Record
	version int64
}

func NewMemory() *Memory {
	m := &Memory{
		nextID: 1,
		tables: make(map[Table][]*memRow, len(tableColumns)),
	}
	for t := range tableColumns {
		m.tables[t] = nil
	}
	return m
}

func (m *Memory) ReadAll(table Table) ([]Record, error) {
	cols, err := columnsFor(table)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Record
	for _, row := range m.tables[table] {
		out = append(out, row.snapshot(cols))
	}
	return out, nil
}

func (m *Memory) AppendRow(table Table, rec Record) error {
	cols, err := columnsFor(table)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cells := make(Record, len(cols))
	for _, c := range cols {
		cells[c] = rec[c]
	}
	m.tables[table] = append(m.tables[table], &memRow{ref: m.nextID, cells: cells})
	m.nextID++
	return nil
}

func (m *Memory) FindRowByKey(table Table, keyColumn, value string) (RowRef, Record, error) {
	cols, err := columnsFor(table)
	if err != nil {
		return 0, nil, err
	}
	key := NormalizeColumn(keyColumn)
	if !validColumn(table, key) {
		return 0, nil, fmt.Errorf("unknown column %q in table %q", keyColumn, table)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.tables[table] {
		if row.cells[key] == value {
			return row.ref, row.snapshot(cols), nil
		}
	}
	return 0, nil, fmt.Errorf("find %s by %s=%q: %w", table, key, value, ErrNotFound)
}

func (m *Memory) UpdateCell(table Table, ref RowRef, column, value string) error {
	col := NormalizeColumn(column)
	if !validColumn(table, col) {
		return fmt.Errorf("unknown column %q in table %q", column, table)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row := m.find(table, ref)
	if row == nil {
		return fmt.Errorf("update %s row %d: %w", table, ref, ErrNotFound)
	}
	row.cells[col] = value
	row.version++
	return nil
}

func (m *Memory) UpdateRow(table Table, ref RowRef, version int64, changes Record) error {
	if _, err := columnsFor(table); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row := m.find(table, ref)
	if row == nil {
		return fmt.Errorf("update %s row %d: %w", table, ref, ErrNotFound)
	}
	if row.version != version {
		return fmt.Errorf("update %s row %d at version %d: %w", table, ref, version, ErrConflict)
	}
	for _, c := range tableColumns[table] {
		if v, ok := changes[c]; ok {
			row.cells[c] = v
		}
	}
	row.version++
	return nil
}

func (m *Memory) find(table Table, ref RowRef) *memRow {
	for _, row := range m.tables[table] {
		if row.ref == ref {
			return row
		}
	}
	return nil
}

func (r *memRow) snapshot(cols []string) Record {
	rec := make(Record, len(cols)+1)
	for _, c := range cols {
		rec[c] = r.cells[c]
	}
	rec[versionColumn] = strconv.FormatInt(r.version, 10)
	return rec
}
