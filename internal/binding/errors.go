package binding

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCitiesInSheet is returned when no table row names a city.
	ErrNoCitiesInSheet = errors.New("no cities found in the sheet")
	// ErrUnknownTableDay is returned when a table region refers to a day that was not requested.
	ErrUnknownTableDay = errors.New("table region refers to an unknown day")
)

// RowRangeError reports a table region that does not fit the sheet.
type RowRangeError struct {
	Table      string
	StartRow   int
	EndRow     int
	HighestRow int
}

func (e *RowRangeError) Error() string {
	return fmt.Sprintf("invalid row range for table %s: rows %d-%d, sheet has %d rows",
		e.Table, e.StartRow, e.EndRow, e.HighestRow)
}

// MissingCityError reports an expected city without a record at binding time.
type MissingCityError struct {
	City  string
	Table string
}

func (e *MissingCityError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("no forecast record for city %s", e.City)
	}
	return fmt.Sprintf("no forecast record for city %s in table %s", e.City, e.Table)
}
