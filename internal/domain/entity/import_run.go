package entity

import (
	"time"
)

// Import Run Status
const (
	ImportCompleted = "COMPLETED"
	ImportFailed    = "FAILED"
)

// ImportRun describes one uploaded file and what happened to its rows
type ImportRun struct {
	ID                uint      `json:"id"`
	FileName          string    `json:"file_name"`
	RowsRead          int       `json:"rows_read"`
	DroppedUnanswered int       `json:"dropped_unanswered"` // first answer at 00:00:00
	DroppedUnresolved int       `json:"dropped_unresolved"` // no last answer date
	RowsSkipped       int       `json:"rows_skipped"`       // invalid rows under PolicySkip
	RecordsSynced     int       `json:"records_synced"`
	Status            string    `json:"status"`
	ErrorDetail       string    `json:"error_detail,omitempty"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}
