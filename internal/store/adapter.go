package store

import "context"

// Adapter defines the raw positional operations a spreadsheet backend must
// provide. Implementations wrap remote failures with ErrStorageUnavailable
// and never retry; the store propagates failures to the caller as-is.
//
// Row indices are absolute within the sheet. UpdateRow uses 1-based indexing
// (the header occupies row 1), DeleteRow uses 0-based indexing (the header
// occupies index 0). This mirrors the conventions of the underlying APIs.
type Adapter interface {
	// ReadAll returns every row of the sheet, header included. A sheet
	// with no content yields an empty slice, not an error.
	ReadAll(ctx context.Context, sheet string) ([][]interface{}, error)

	// Append adds one row after the last existing row. No schema or
	// uniqueness checks are performed here.
	Append(ctx context.Context, sheet string, row []interface{}) error

	// UpdateRow overwrites the full content of the row at the given
	// 1-based position.
	UpdateRow(ctx context.Context, sheet string, rowIndex1 int, row []interface{}) error

	// DeleteRow removes the row at the given 0-based position, shifting
	// subsequent rows up.
	DeleteRow(ctx context.Context, sheet string, rowIndex0 int) error
}
