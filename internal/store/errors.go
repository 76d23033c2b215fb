package store

import "errors"

var (
	// ErrNotFound is returned when no record with the requested id exists.
	ErrNotFound = errors.New("record not found")

	// ErrSchema is returned when a sheet is missing its header row or its
	// id column. This indicates misconfiguration of the spreadsheet.
	ErrSchema = errors.New("invalid sheet schema")

	// ErrStorageUnavailable is returned when the backing spreadsheet
	// service could not be reached or rejected the call.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrConflict is returned by uniqueness pre-checks before an insert.
	// The store itself never enforces uniqueness beyond id generation.
	ErrConflict = errors.New("uniqueness violation")
)
