// Package excel implements the record store's adapter interface on top of a
// local Excel workbook. It exists for local development and offline testing;
// the semantics mirror the Google Sheets adapter, including absolute row
// addressing and the absence of read-modify-write atomicity.
package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"nutriapi/internal/store"
)

// Adapter implements store.Adapter for Excel files
type Adapter struct {
	config Config
	mu     sync.Mutex
}

var _ store.Adapter = (*Adapter)(nil)

// New creates a new Excel adapter with the given configuration
func New(config Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Adapter{config: config}, nil
}

// ReadAll returns every row of the sheet, header included. A missing file
// or sheet yields an empty slice.
func (a *Adapter) ReadAll(ctx context.Context, sheet string) ([][]interface{}, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(a.config.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return [][]interface{}{}, nil
		}
		return nil, storageErr("failed to open workbook", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, storageErr("failed to get sheet index", err)
	}
	if idx == -1 {
		return [][]interface{}{}, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, storageErr("failed to get rows", err)
	}

	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		out[i] = cells
	}
	return out, nil
}

// Append adds one row after the last existing row
func (a *Adapter) Append(ctx context.Context, sheet string, row []interface{}) error {
	return a.mutate(ctx, sheet, func(f *excelize.File) error {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return storageErr("failed to get rows", err)
		}

		cell := fmt.Sprintf("A%d", len(rows)+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return storageErr("failed to append row", err)
		}
		return nil
	})
}

// UpdateRow overwrites the full content of the row at the given 1-based
// position
func (a *Adapter) UpdateRow(ctx context.Context, sheet string, rowIndex1 int, row []interface{}) error {
	return a.mutate(ctx, sheet, func(f *excelize.File) error {
		cell := fmt.Sprintf("A%d", rowIndex1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return storageErr("failed to update row", err)
		}
		return nil
	})
}

// DeleteRow removes the row at the given 0-based position, shifting
// subsequent rows up
func (a *Adapter) DeleteRow(ctx context.Context, sheet string, rowIndex0 int) error {
	return a.mutate(ctx, sheet, func(f *excelize.File) error {
		// excelize rows are 1-based.
		if err := f.RemoveRow(sheet, rowIndex0+1); err != nil {
			return storageErr("failed to delete row", err)
		}
		return nil
	})
}

// EnsureSheets creates any missing entity sheets and writes their header
// rows. Called once at startup.
func (a *Adapter) EnsureSheets(ctx context.Context) error {
	for _, sheet := range store.Sheets() {
		rows, err := a.ReadAll(ctx, sheet)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			continue
		}

		header := make([]interface{}, len(store.Columns[sheet]))
		for i, col := range store.Columns[sheet] {
			header[i] = col
		}
		if err := a.UpdateRow(ctx, sheet, 1, header); err != nil {
			return err
		}
	}
	return nil
}

// mutate opens (or creates) the workbook, ensures the sheet exists, applies
// fn, and saves. The whole sequence runs under the adapter mutex because a
// single process owns the file.
func (a *Adapter) mutate(ctx context.Context, sheet string, fn func(f *excelize.File) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	var f *excelize.File
	if _, err := os.Stat(a.config.FilePath); err == nil {
		f, err = excelize.OpenFile(a.config.FilePath)
		if err != nil {
			return storageErr("failed to open workbook", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(a.config.FilePath), 0o755); err != nil {
			return storageErr("failed to create directory", err)
		}
		f = excelize.NewFile()
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return storageErr("failed to get sheet index", err)
	}
	if idx == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return storageErr("failed to create sheet", err)
		}
	}

	if err := fn(f); err != nil {
		return err
	}

	if err := f.SaveAs(a.config.FilePath); err != nil {
		return storageErr("failed to save workbook", err)
	}
	return nil
}

func storageErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, store.ErrStorageUnavailable, err)
}
