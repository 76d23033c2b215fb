package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Store provides CRUD semantics over sheets. The backing medium has no
// native indexing, constraints or transactions, so every operation
// re-reads the full sheet; row positions are recomputed on each mutation
// because only the id column identifies a record across requests.
//
// Concurrent writers are not serialized. Two overlapping inserts can
// allocate the same id, and an insert or delete landing between a
// mutation's read and its write can shift the target row. These are
// accepted limitations of the medium, surfaced rather than masked.
type Store struct {
	adapter Adapter
}

// New creates a store backed by the given adapter
func New(adapter Adapter) *Store {
	return &Store{adapter: adapter}
}

// ListAll returns every record of the sheet in row order. A sheet with
// only a header row, or no rows at all, yields an empty slice.
func (s *Store) ListAll(ctx context.Context, sheet string) ([]Record, error) {
	rows, err := s.readAll(ctx, sheet)
	if err != nil {
		return nil, err
	}
	return ToRecords(rows), nil
}

// FindByID returns the first record whose id column equals the given id.
// Ids are compared as strings regardless of the underlying cell type.
func (s *Store) FindByID(ctx context.Context, sheet, id string) (Record, error) {
	records, err := s.ListAll(ctx, sheet)
	if err != nil {
		return Record{}, err
	}

	for _, record := range records {
		if record.ID() == id {
			return record, nil
		}
	}
	return Record{}, fmt.Errorf("sheet %s id %s: %w", sheet, id, ErrNotFound)
}

// FindByField returns the first record whose column equals the given value
// under string normalization. Used by callers for domain uniqueness
// pre-checks and lookups such as login by email.
func (s *Store) FindByField(ctx context.Context, sheet, column, value string) (Record, error) {
	records, err := s.ListAll(ctx, sheet)
	if err != nil {
		return Record{}, err
	}

	for _, record := range records {
		if record.GetAsString(column, "") == value {
			return record, nil
		}
	}
	return Record{}, fmt.Errorf("sheet %s %s=%s: %w", sheet, column, value, ErrNotFound)
}

// Insert appends a new record with a generated id. The id is
// 1 + max(existing numeric ids), or 1 for an empty sheet. Gaps left by
// deletions are never refilled. The scan and the append are separate
// remote calls, so two concurrent inserts can allocate the same id.
func (s *Store) Insert(ctx context.Context, sheet string, fields map[string]interface{}) (int64, Record, error) {
	rows, err := s.readAll(ctx, sheet)
	if err != nil {
		return 0, Record{}, err
	}

	header, idIdx, err := requireIDColumn(sheet, rows)
	if err != nil {
		return 0, Record{}, err
	}

	id := nextID(ToRecords(rows))

	record := Record{Values: make(map[string]interface{}, len(header))}
	row := make([]interface{}, len(header))
	for i, cell := range header {
		col := columnName(cell)
		if i == idIdx {
			row[i] = ToCellValue(id)
			record.Values[col] = id
			continue
		}
		v, ok := fields[col]
		if !ok {
			row[i] = ""
			continue
		}
		row[i] = ToCellValue(v)
		record.Values[col] = v
	}

	if err := s.adapter.Append(ctx, sheet, row); err != nil {
		return 0, Record{}, fmt.Errorf("insert into %s: %w", sheet, err)
	}

	log.Debug().Str("sheet", sheet).Int64("id", id).Msg("Inserted record")
	return id, record, nil
}

// UpdateByID merges the given fields onto the record with the given id.
// Columns absent from updates keep their prior value, and the id column is
// never overwritten. The target row position is recomputed from a fresh
// read taken just before the write.
func (s *Store) UpdateByID(ctx context.Context, sheet, id string, updates map[string]interface{}) (Record, error) {
	rows, err := s.readAll(ctx, sheet)
	if err != nil {
		return Record{}, err
	}

	header, idIdx, err := requireIDColumn(sheet, rows)
	if err != nil {
		return Record{}, err
	}

	pos := locateRow(rows, idIdx, id)
	if pos < 0 {
		return Record{}, fmt.Errorf("sheet %s id %s: %w", sheet, id, ErrNotFound)
	}

	row := make([]interface{}, len(header))
	copy(row, rows[pos])

	record := Record{Values: make(map[string]interface{}, len(header))}
	for i, cell := range header {
		col := columnName(cell)
		if col == "" {
			continue
		}
		if v, ok := updates[col]; ok && i != idIdx {
			row[i] = ToCellValue(v)
		}
		if i < len(row) && row[i] != nil && row[i] != "" {
			record.Values[col] = FromCellValue(row[i])
		}
	}

	// Absolute 1-based position: header is row 1, data row at slice
	// index pos is row pos+1.
	if err := s.adapter.UpdateRow(ctx, sheet, pos+1, row); err != nil {
		return Record{}, fmt.Errorf("update %s id %s: %w", sheet, id, err)
	}

	log.Debug().Str("sheet", sheet).Str("id", id).Int("row", pos+1).Msg("Updated record")
	return record, nil
}

// DeleteByID physically removes the row with the given id, shifting
// subsequent rows up. The target position is recomputed from a fresh read
// taken just before the write.
func (s *Store) DeleteByID(ctx context.Context, sheet, id string) error {
	rows, err := s.readAll(ctx, sheet)
	if err != nil {
		return err
	}

	_, idIdx, err := requireIDColumn(sheet, rows)
	if err != nil {
		return err
	}

	pos := locateRow(rows, idIdx, id)
	if pos < 0 {
		return fmt.Errorf("sheet %s id %s: %w", sheet, id, ErrNotFound)
	}

	// Absolute 0-based position including the header row.
	if err := s.adapter.DeleteRow(ctx, sheet, pos); err != nil {
		return fmt.Errorf("delete %s id %s: %w", sheet, id, err)
	}

	log.Debug().Str("sheet", sheet).Str("id", id).Int("row", pos).Msg("Deleted record")
	return nil
}

// readAll fetches the full sheet, wrapping adapter failures with context
func (s *Store) readAll(ctx context.Context, sheet string) ([][]interface{}, error) {
	rows, err := s.adapter.ReadAll(ctx, sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	return rows, nil
}

// requireIDColumn validates that the sheet has a header row containing an
// id column, returning the header and the id column index.
func requireIDColumn(sheet string, rows [][]interface{}) ([]interface{}, int, error) {
	if len(rows) == 0 {
		return nil, -1, fmt.Errorf("sheet %s has no header row: %w", sheet, ErrSchema)
	}
	header := rows[0]
	idIdx := ColumnIndex(header, "id")
	if idIdx < 0 {
		return nil, -1, fmt.Errorf("sheet %s has no id column: %w", sheet, ErrSchema)
	}
	return header, idIdx, nil
}

// locateRow returns the slice index of the data row whose id column equals
// id, or -1. Index 0 is the header, so the scan starts at 1.
func locateRow(rows [][]interface{}, idIdx int, id string) int {
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if idIdx >= len(row) || row[idIdx] == nil {
			continue
		}
		cell := Record{Values: map[string]interface{}{"id": FromCellValue(row[idIdx])}}
		if cell.ID() == id {
			return i
		}
	}
	return -1
}

// nextID computes the id for a new record: 1 + the highest numeric id
// currently in the sheet, or 1 when the sheet has no data rows.
func nextID(records []Record) int64 {
	var max int64
	for i := range records {
		if id := records[i].GetAsInt64("id", 0); id > max {
			max = id
		}
	}
	return max + 1
}
