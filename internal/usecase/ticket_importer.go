package usecase

import (
	"fmt"
	"strings"

	"kayako-stat-service/internal/domain/entity"
	"kayako-stat-service/pkg/logger"
	"kayako-stat-service/pkg/utils"
)

// ErrorPolicy decides what the importer does with a row that fails to parse
type ErrorPolicy int

const (
	// PolicyAbort stops the import at the first invalid row
	PolicyAbort ErrorPolicy = iota
	// PolicySkip leaves invalid rows out and keeps going
	PolicySkip
)

// ImportResult holds the surviving records and what happened to the rest
type ImportResult struct {
	Records           []*entity.TicketRecord
	RowsRead          int
	DroppedUnanswered int
	DroppedUnresolved int
	Skipped           []*entity.ParseError
}

// TicketImporter turns raw export rows into normalized ticket records
type TicketImporter struct {
	policy ErrorPolicy
	logger logger.Logger
}

// NewTicketImporter creates a new ticket importer
func NewTicketImporter(policy ErrorPolicy, logger logger.Logger) *TicketImporter {
	return &TicketImporter{
		policy: policy,
		logger: logger,
	}
}

// Import normalizes rows, where rows[0] is the header. Records come back in
// row order. Under PolicyAbort the first ParseError is returned with no records.
func (im *TicketImporter) Import(rows [][]string) (*ImportResult, error) {
	result := &ImportResult{
		Records: make([]*entity.TicketRecord, 0),
	}
	if len(rows) == 0 {
		return result, nil
	}

	header := rows[0]
	if len(header) < utils.ColumnCount {
		return nil, &entity.ParseError{
			Row:    1,
			Column: utils.ColumnNames[len(header)],
			Err:    fmt.Errorf("%w: header has %d of %d columns", entity.ErrMissingColumn, len(header), utils.ColumnCount),
		}
	}

	for i, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		result.RowsRead++

		res := utils.ParseRow(i+2, cells)
		switch {
		case res.Err != nil:
			if im.policy == PolicyAbort {
				return nil, res.Err
			}
			im.logger.Warn("Skipping invalid row", "row", res.Err.Row, "column", res.Err.Column, "error", res.Err.Err)
			result.Skipped = append(result.Skipped, res.Err)
		case res.Drop == utils.DropUnanswered:
			result.DroppedUnanswered++
		case res.Drop == utils.DropUnresolved:
			result.DroppedUnresolved++
		default:
			result.Records = append(result.Records, res.Record)
		}
	}

	im.logger.Info("Rows normalized",
		"rowsRead", result.RowsRead,
		"records", len(result.Records),
		"droppedUnanswered", result.DroppedUnanswered,
		"droppedUnresolved", result.DroppedUnresolved,
		"skipped", len(result.Skipped))

	return result, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
