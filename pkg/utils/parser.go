package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"kayako-stat-service/internal/domain/entity"

	"github.com/xuri/excelize/v2"
)

var (
	errEmpty       = errors.New("value is required")
	errNotInteger  = errors.New("not an integer")
	errNotDate     = errors.New("not a date")
	errNotTime     = errors.New("not a time of day")
	errNoAnswerDay = errors.New("first answer date is required for answered tickets")
)

const (
	// int64 bounds as floats; 2^63 itself does not fit
	minTicketID = -9.223372036854775808e18
	maxTicketID = 9.223372036854775808e18

	// Excel serial of 10000-01-01, one day past the last date Excel stores
	maxExcelSerial = 2958466
)

// ParseRow converts one positional row into a RowResult. rowNum is the
// 1-based sheet row used in error messages. Cells beyond the eighth are
// ignored and missing trailing cells read as empty.
func ParseRow(rowNum int, cells []string) RowResult {
	cell := func(col int) string {
		if col < len(cells) {
			return strings.TrimSpace(cells[col])
		}
		return ""
	}
	fail := func(col int, err error) RowResult {
		return RowResult{Err: &entity.ParseError{
			Row:    rowNum,
			Column: ColumnNames[col],
			Value:  cell(col),
			Err:    err,
		}}
	}

	id, err := ParseTicketID(cell(ColID))
	if err != nil {
		return fail(ColID, err)
	}

	created, ok, err := ParseTimestamp(cell(ColCreationDate))
	if err != nil {
		return fail(ColCreationDate, err)
	}
	if !ok {
		return fail(ColCreationDate, errEmpty)
	}

	firstAnswer, answered, err := ParseClock(cell(ColFirstAnswerDate))
	if err != nil {
		return fail(ColFirstAnswerDate, err)
	}

	lastAnswer, resolved, err := ParseTimestamp(cell(ColLastAnswerDate))
	if err != nil {
		return fail(ColLastAnswerDate, err)
	}

	// Midnight is how the source system marks a ticket that was never answered
	if answered && firstAnswer == 0 {
		return RowResult{Drop: DropUnanswered}
	}
	if !resolved {
		return RowResult{Drop: DropUnresolved}
	}
	if !answered {
		return fail(ColFirstAnswerDate, errNoAnswerDay)
	}

	return RowResult{Record: &entity.TicketRecord{
		ID:                 id,
		CreationDate:       created,
		SystemID:           cell(ColSystemID),
		Type:               cell(ColType),
		Status:             cell(ColStatus),
		FirstAnswerSeconds: firstAnswer,
		LastAnswerDate:     lastAnswer,
		Region:             NormalizeRegion(cell(ColRegion)),
	}}
}

// NormalizeRegion substitutes the unspecified sentinel for blank regions
func NormalizeRegion(region string) string {
	region = strings.TrimSpace(region)
	if region == "" || strings.EqualFold(region, "nan") {
		return entity.RegionUnspecified
	}
	return region
}

// ParseTicketID parses an integer id. Spreadsheet exports sometimes carry
// integral floats such as "3.0", which are accepted.
func ParseTicketID(value string) (int64, error) {
	if value == "" {
		return 0, errEmpty
	}
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != math.Trunc(f) || f < minTicketID || f >= maxTicketID {
		return 0, errNotInteger
	}
	return int64(f), nil
}

// ParseTimestamp parses an Excel serial number or a textual date. The bool
// result is false for an empty cell, including the "NaN"/"NaT" markers
// left by dataframe exports.
func ParseTimestamp(value string) (time.Time, bool, error) {
	if value == "" || strings.EqualFold(value, "nan") || strings.EqualFold(value, "nat") {
		return time.Time{}, false, nil
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(serial) || serial < 0 || serial >= maxExcelSerial {
			return time.Time{}, false, errNotDate
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: %v", errNotDate, err)
		}
		return t.Round(time.Second).UTC(), true, nil
	}
	for _, layout := range DATE_LAYOUTS {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true, nil
		}
	}
	return time.Time{}, false, errNotDate
}

// ParseClock returns seconds since midnight for a time, date-time or Excel
// serial value. The bool result is false for an empty cell.
func ParseClock(value string) (int, bool, error) {
	if value == "" {
		return 0, false, nil
	}
	for _, layout := range CLOCK_LAYOUTS {
		if t, err := time.Parse(layout, value); err == nil {
			return SecondsOfDay(t), true, nil
		}
	}
	t, ok, err := ParseTimestamp(value)
	if err != nil {
		return 0, false, errNotTime
	}
	return SecondsOfDay(t), ok, nil
}

// SecondsOfDay returns hour*3600 + minute*60 + second
func SecondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
