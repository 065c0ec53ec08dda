package utils

import (
	"time"

	"kayako-stat-service/internal/domain/entity"
)

// Positional columns of a ticket export
const (
	ColID = iota
	ColCreationDate
	ColSystemID
	ColType
	ColStatus
	ColFirstAnswerDate
	ColLastAnswerDate
	ColRegion

	ColumnCount
)

// ColumnNames maps positional columns to the names used in errors and storage
var ColumnNames = [ColumnCount]string{
	"id",
	"creation_date",
	"system_id",
	"type",
	"status",
	"first_answer_date",
	"last_answer_date",
	"region",
}

// DropReason tells why a well-formed row produced no record
type DropReason int

const (
	Keep DropReason = iota
	DropUnanswered
	DropUnresolved
)

func (d DropReason) String() string {
	switch d {
	case DropUnanswered:
		return "unanswered"
	case DropUnresolved:
		return "unresolved"
	default:
		return "keep"
	}
}

// RowResult is the outcome of parsing one row: exactly one of Record,
// a non-Keep Drop, or Err is set.
type RowResult struct {
	Record *entity.TicketRecord
	Drop   DropReason
	Err    *entity.ParseError
}

// Constants
var (
	DATE_LAYOUTS = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"02.01.2006 15:04:05",
		"02.01.2006 15:04",
		"02.01.2006",
		time.RFC3339,
	}
	CLOCK_LAYOUTS = []string{
		"15:04:05",
		"15:04",
	}
)
