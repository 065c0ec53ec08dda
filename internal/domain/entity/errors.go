package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is wrapped by a ParseError when the header is too short
	ErrMissingColumn = errors.New("missing column")
	// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrInvalidRange is returned when a report ends before it starts
	ErrInvalidRange = errors.New("end date is before start date")
)

// ParseError reports a row that could not be converted into a TicketRecord.
// Row is 1-based and counts the header row, matching the spreadsheet view.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d, column %s (%q): %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StorageError reports a record store fault during sync
type StorageError struct {
	Op       string
	TicketID int64
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s for ticket %d: %v", e.Op, e.TicketID, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
