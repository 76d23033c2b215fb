// Package storetest provides an in-memory adapter for tests. It mimics the
// spreadsheet medium's behavior, including its lack of read-modify-write
// atomicity, and offers error and latency injection hooks.
package storetest

import (
	"context"
	"sync"
	"time"

	"nutriapi/internal/store"
)

// Fake is an in-memory store.Adapter
type Fake struct {
	mu     sync.Mutex
	sheets map[string][][]interface{}

	// Err, when set, is returned by every operation.
	Err error

	// ReadDelay delays ReadAll before it returns, widening the window
	// between a caller's read and its subsequent write.
	ReadDelay time.Duration
}

// New creates an empty fake adapter
func New() *Fake {
	return &Fake{sheets: make(map[string][][]interface{})}
}

// NewSeeded creates a fake adapter with a header row for every entity sheet
func NewSeeded() *Fake {
	f := New()
	for _, sheet := range store.Sheets() {
		header := make([]interface{}, len(store.Columns[sheet]))
		for i, col := range store.Columns[sheet] {
			header[i] = col
		}
		f.sheets[sheet] = [][]interface{}{header}
	}
	return f
}

// Seed appends raw rows to a sheet without any checks
func (f *Fake) Seed(sheet string, rows ...[]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sheets[sheet] = append(f.sheets[sheet], rows...)
}

// Rows returns a copy of the sheet's raw rows
func (f *Fake) Rows(sheet string) [][]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyRows(f.sheets[sheet])
}

// ReadAll returns every row of the sheet, header included
func (f *Fake) ReadAll(ctx context.Context, sheet string) ([][]interface{}, error) {
	if f.Err != nil {
		return nil, f.Err
	}

	f.mu.Lock()
	rows := copyRows(f.sheets[sheet])
	f.mu.Unlock()

	if f.ReadDelay > 0 {
		select {
		case <-time.After(f.ReadDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return rows, nil
}

// Append adds one row after the last existing row
func (f *Fake) Append(ctx context.Context, sheet string, row []interface{}) error {
	if f.Err != nil {
		return f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sheets[sheet] = append(f.sheets[sheet], copyRow(row))
	return nil
}

// UpdateRow overwrites the row at the given 1-based position. Like the real
// medium, it succeeds even when the position no longer matches the row the
// caller had in mind.
func (f *Fake) UpdateRow(ctx context.Context, sheet string, rowIndex1 int, row []interface{}) error {
	if f.Err != nil {
		return f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	rows := f.sheets[sheet]
	for len(rows) < rowIndex1 {
		rows = append(rows, []interface{}{})
	}
	rows[rowIndex1-1] = copyRow(row)
	f.sheets[sheet] = rows
	return nil
}

// DeleteRow removes the row at the given 0-based position
func (f *Fake) DeleteRow(ctx context.Context, sheet string, rowIndex0 int) error {
	if f.Err != nil {
		return f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	rows := f.sheets[sheet]
	if rowIndex0 < 0 || rowIndex0 >= len(rows) {
		return nil
	}
	f.sheets[sheet] = append(rows[:rowIndex0], rows[rowIndex0+1:]...)
	return nil
}

func copyRows(rows [][]interface{}) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		out[i] = copyRow(row)
	}
	return out
}

func copyRow(row []interface{}) []interface{} {
	out := make([]interface{}, len(row))
	copy(out, row)
	return out
}
