// Package googlesheets implements the record store's adapter interface on
// top of the Google Sheets API. One spreadsheet holds every entity sheet;
// sheets are addressed by title, never by positional index, because sheet
// order is not stable across reorders in the UI.
package googlesheets

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"nutriapi/internal/store"
)

// Client implements store.Adapter for Google Sheets
type Client struct {
	service       *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64 // title -> sheetId
}

var _ store.Adapter = (*Client)(nil)

// New creates a new Google Sheets client with the provided options
func New(ctx context.Context, config Config, opts ...option.ClientOption) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: config.SpreadsheetID,
		sheetIDs:      make(map[string]int64),
	}, nil
}

// ReadAll returns every row of the sheet, header included
func (c *Client) ReadAll(ctx context.Context, sheet string) ([][]interface{}, error) {
	readRange := fmt.Sprintf("%s!A:ZZ", sheet)
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, storageErr("failed to get sheet data", err)
	}
	return resp.Values, nil
}

// Append adds one row after the last existing row
func (c *Client) Append(ctx context.Context, sheet string, row []interface{}) error {
	appendRange := fmt.Sprintf("%s!A1", sheet)
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}

	_, err := c.service.Spreadsheets.Values.Append(c.spreadsheetID, appendRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return storageErr("failed to append row", err)
	}
	return nil
}

// UpdateRow overwrites the full content of the row at the given 1-based
// position. The API performs no read-modify-write check, so the write
// succeeds even if the row has shifted since the caller located it.
func (c *Client) UpdateRow(ctx context.Context, sheet string, rowIndex1 int, row []interface{}) error {
	writeRange := fmt.Sprintf("%s!A%d", sheet, rowIndex1)
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}

	_, err := c.service.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return storageErr("failed to update row", err)
	}
	return nil
}

// DeleteRow removes the row at the given 0-based position, shifting
// subsequent rows up
func (c *Client) DeleteRow(ctx context.Context, sheet string, rowIndex0 int) error {
	sheetID, err := c.resolveSheetID(ctx, sheet)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex0),
					EndIndex:   int64(rowIndex0 + 1),
				},
			},
		}},
	}

	_, err = c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return storageErr("failed to delete row", err)
	}
	return nil
}

// EnsureSheets creates any missing entity sheets and writes their header
// rows. Called once at startup; existing sheets are left untouched.
func (c *Client) EnsureSheets(ctx context.Context) error {
	meta, err := c.service.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return storageErr("failed to get spreadsheet metadata", err)
	}

	existing := make(map[string]bool)
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
			c.rememberSheetID(sh.Properties.Title, sh.Properties.SheetId)
		}
	}

	for _, sheet := range store.Sheets() {
		if existing[sheet] {
			continue
		}

		addReq := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: sheet},
				},
			}},
		}
		resp, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, addReq).Context(ctx).Do()
		if err != nil {
			return storageErr(fmt.Sprintf("failed to create sheet %s", sheet), err)
		}
		for _, r := range resp.Replies {
			if r.AddSheet != nil && r.AddSheet.Properties != nil {
				c.rememberSheetID(sheet, r.AddSheet.Properties.SheetId)
			}
		}

		header := make([]interface{}, len(store.Columns[sheet]))
		for i, col := range store.Columns[sheet] {
			header[i] = col
		}
		if err := c.UpdateRow(ctx, sheet, 1, header); err != nil {
			return err
		}
	}

	return nil
}

// resolveSheetID looks up a sheet's stable numeric id by its title. The
// mapping is cached; a cache miss triggers a metadata fetch.
func (c *Client) resolveSheetID(ctx context.Context, sheet string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[sheet]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	meta, err := c.service.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, storageErr("failed to get spreadsheet metadata", err)
	}

	for _, sh := range meta.Sheets {
		if sh.Properties == nil {
			continue
		}
		c.rememberSheetID(sh.Properties.Title, sh.Properties.SheetId)
		if sh.Properties.Title == sheet {
			id = sh.Properties.SheetId
			ok = true
		}
	}

	if !ok {
		return 0, fmt.Errorf("sheet %s not found in spreadsheet: %w", sheet, store.ErrSchema)
	}
	return id, nil
}

func (c *Client) rememberSheetID(title string, id int64) {
	c.mu.Lock()
	c.sheetIDs[title] = id
	c.mu.Unlock()
}

// storageErr wraps a remote failure so callers can match it with
// errors.Is(err, store.ErrStorageUnavailable) while keeping the cause.
func storageErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, store.ErrStorageUnavailable, err)
}
