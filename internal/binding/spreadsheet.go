package binding

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/meteo-template/internal/weather"
)

// SheetReader is the read side of the spreadsheet accessor.
type SheetReader interface {
	GetCellValue(address string) (string, error)
	HighestRow() (int, error)
}

// RowLookup selects how a city's row inside a table region is found.
type RowLookup string

const (
	// RowByName finds the row whose city column holds the city name.
	RowByName RowLookup = "name"
	// RowByPosition uses the city's index in the static list as the row offset.
	RowByPosition RowLookup = "position"
)

// SharedCellMode decides which city's values survive in the table-wide header cells.
type SharedCellMode string

const (
	// SharedCellLastWriterWins writes the header cells for every city, so the last one stays.
	SharedCellLastWriterWins SharedCellMode = "last-writer-wins"
	// SharedCellFirstWriterWins keeps the values of the first bound city.
	SharedCellFirstWriterWins SharedCellMode = "first-writer-wins"
)

// MissingCityPolicy decides what happens to an expected city without a record.
type MissingCityPolicy string

const (
	MissingCitySkip MissingCityPolicy = "skip"
	MissingCityFail MissingCityPolicy = "fail"
)

// ParseRowLookup validates a configured row lookup name.
func ParseRowLookup(s string) (RowLookup, error) {
	switch RowLookup(s) {
	case RowByName, RowByPosition:
		return RowLookup(s), nil
	case "":
		return RowByName, nil
	}
	return "", fmt.Errorf("unknown row lookup %q", s)
}

// ParseSharedCellMode validates a configured shared cell mode name.
func ParseSharedCellMode(s string) (SharedCellMode, error) {
	switch SharedCellMode(s) {
	case SharedCellLastWriterWins, SharedCellFirstWriterWins:
		return SharedCellMode(s), nil
	case "":
		return SharedCellLastWriterWins, nil
	}
	return "", fmt.Errorf("unknown shared cell mode %q", s)
}

// ParseMissingCityPolicy validates a configured missing city policy name.
func ParseMissingCityPolicy(s string) (MissingCityPolicy, error) {
	switch MissingCityPolicy(s) {
	case MissingCitySkip, MissingCityFail:
		return MissingCityPolicy(s), nil
	case "":
		return MissingCitySkip, nil
	}
	return "", fmt.Errorf("unknown missing city policy %q", s)
}

// TableRegion is a contiguous row range dedicated to one reporting day.
type TableRegion struct {
	Name     string
	Day      string // day label of the records bound into this table
	StartRow int
	EndRow   int
	// HeaderRow holds the table-wide pressure and wind cells.
	HeaderRow int
	// DateRow holds the date and weekday cells.
	DateRow int
}

// Columns are the column letters of the template.
type Columns struct {
	City string

	TempDay         string
	TempNight       string
	WeatherDay      string
	WeatherNight    string
	CloudinessDay   string
	CloudinessNight string

	Pressure           string
	WindSpeedDay       string
	WindSpeedNight     string
	WindDirectionDay   string
	WindDirectionNight string

	Date     string
	DayMonth string
	Weekday  string
}

// DefaultColumns returns the layout of the METEO template.
func DefaultColumns() Columns {
	return Columns{
		City: "C",

		TempDay:         "T",
		TempNight:       "BV",
		WeatherDay:      "AW",
		WeatherNight:    "BH",
		CloudinessDay:   "Z",
		CloudinessNight: "BK",

		Pressure:           "BC",
		WindSpeedDay:       "AL",
		WindSpeedNight:     "BO",
		WindDirectionDay:   "T",
		WindDirectionNight: "BV",

		Date:     "L",
		DayMonth: "AG",
		Weekday:  "W",
	}
}

// DefaultTables returns the two table regions of the METEO template.
func DefaultTables() []TableRegion {
	return []TableRegion{
		{Name: "table1", Day: weather.LabelTomorrow, StartRow: 8, EndRow: 22, HeaderRow: 6, DateRow: 2},
		{Name: "table2", Day: weather.LabelDayAfter, StartRow: 31, EndRow: 45, HeaderRow: 29, DateRow: 25},
	}
}

// SpreadsheetScheme binds record sets to cell addresses of a template sheet.
type SpreadsheetScheme struct {
	Tables  []TableRegion
	Columns Columns
	Lookup  RowLookup
	Shared  SharedCellMode
	Missing MissingCityPolicy
	// StrictRows rejects a region whose end row lies beyond the sheet. Otherwise the
	// end row is clamped and only an empty range is rejected.
	StrictRows bool
}

// DefaultSpreadsheetScheme returns the METEO template scheme.
func DefaultSpreadsheetScheme() SpreadsheetScheme {
	return SpreadsheetScheme{
		Tables:     DefaultTables(),
		Columns:    DefaultColumns(),
		Lookup:     RowByName,
		Shared:     SharedCellLastWriterWins,
		Missing:    MissingCitySkip,
		StrictRows: true,
	}
}

type rowRange struct {
	table      TableRegion
	start, end int
}

func cell(col string, row int) string {
	return col + strconv.Itoa(row)
}

// rows validates every table region against the sheet extent.
func (s SpreadsheetScheme) rows(sheet SheetReader) ([]rowRange, error) {
	highest, err := sheet.HighestRow()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet extent: %w", err)
	}

	out := make([]rowRange, 0, len(s.Tables))
	for _, t := range s.Tables {
		start := max(1, t.StartRow)
		end := min(t.EndRow, highest)
		if start > end || (s.StrictRows && t.EndRow > highest) {
			return nil, &RowRangeError{Table: t.Name, StartRow: t.StartRow, EndRow: t.EndRow, HighestRow: highest}
		}
		out = append(out, rowRange{table: t, start: start, end: end})
	}
	return out, nil
}

// ExtractedCity is a city name found in a table region.
type ExtractedCity struct {
	Name  string `json:"name"`
	Table string `json:"table"`
}

// ExtractCities lists the non-blank city cells of every table region.
func (s SpreadsheetScheme) ExtractCities(sheet SheetReader) ([]ExtractedCity, error) {
	ranges, err := s.rows(sheet)
	if err != nil {
		return nil, err
	}

	var cities []ExtractedCity
	for _, r := range ranges {
		for row := r.start; row <= r.end; row++ {
			v, err := sheet.GetCellValue(cell(s.Columns.City, row))
			if err != nil {
				return nil, err
			}
			if name := strings.TrimSpace(v); name != "" {
				cities = append(cities, ExtractedCity{Name: name, Table: r.table.Name})
			}
		}
	}

	if len(cities) == 0 {
		return nil, ErrNoCitiesInSheet
	}
	return cities, nil
}

// UniqueCityNames returns the extracted names without duplicates, in sheet order.
func UniqueCityNames(cities []ExtractedCity) []string {
	seen := make(map[string]bool, len(cities))
	var out []string
	for _, c := range cities {
		if !seen[c.Name] {
			seen[c.Name] = true
			out = append(out, c.Name)
		}
	}
	return out
}

// Bind maps sets onto the sheet. cities is the static city list used by the position
// lookup; targets provide the calendar date of each table's day label.
//
// Pressure and wind cells live in the table header row, not the city row, so with
// SharedCellLastWriterWins only the last bound city's values survive there.
func (s SpreadsheetScheme) Bind(sheet SheetReader, cities []string, sets []weather.CityForecastSet, targets []weather.DayTarget) (Binding, error) {
	ranges, err := s.rows(sheet)
	if err != nil {
		return Binding{}, err
	}

	dates := make(map[string]time.Time, len(targets))
	for _, t := range targets {
		dates[t.Label] = t.Date
	}
	for _, r := range ranges {
		if _, ok := dates[r.table.Day]; !ok {
			return Binding{}, fmt.Errorf("%w: table %s day %q", ErrUnknownTableDay, r.table.Name, r.table.Day)
		}
	}

	b := newBuilder()
	switch s.Lookup {
	case RowByPosition:
		err = s.bindByPosition(b, ranges, cities, sets)
	default:
		err = s.bindByName(b, sheet, ranges, sets)
	}
	if err != nil {
		return Binding{}, err
	}

	for _, r := range ranges {
		d := dates[r.table.Day]
		b.set(cell(s.Columns.Date, r.table.DateRow), NumericDate(d))
		b.set(cell(s.Columns.DayMonth, r.table.DateRow), ShortDayMonth(d))
		b.set(cell(s.Columns.Weekday, r.table.DateRow), strings.ToUpper(WeekdayName(d.Weekday())))
	}

	return b.build(), nil
}

func (s SpreadsheetScheme) bindByName(b *builder, sheet SheetReader, ranges []rowRange, sets []weather.CityForecastSet) error {
	// Read the city column once.
	names := make([]map[int]string, len(ranges))
	for i, r := range ranges {
		names[i] = make(map[int]string)
		for row := r.start; row <= r.end; row++ {
			v, err := sheet.GetCellValue(cell(s.Columns.City, row))
			if err != nil {
				return err
			}
			if name := strings.TrimSpace(v); name != "" {
				names[i][row] = name
			}
		}
	}

	bound := make(map[string]bool)
	for _, set := range sets {
		for i, r := range ranges {
			rec, ok := set.Day(r.table.Day)
			if !ok {
				continue
			}
			for row := r.start; row <= r.end; row++ {
				if names[i][row] != set.City {
					continue
				}
				s.bindRow(b, r.table, row, rec)
				bound[r.table.Name+"\x00"+strconv.Itoa(row)] = true
			}
		}
	}

	for i, r := range ranges {
		for row := r.start; row <= r.end; row++ {
			name, ok := names[i][row]
			if !ok || bound[r.table.Name+"\x00"+strconv.Itoa(row)] {
				continue
			}
			if s.Missing == MissingCityFail {
				return &MissingCityError{City: name, Table: r.table.Name}
			}
			s.blankRow(b, row)
		}
	}
	return nil
}

func (s SpreadsheetScheme) bindByPosition(b *builder, ranges []rowRange, cities []string, sets []weather.CityForecastSet) error {
	byCity := make(map[string]weather.CityForecastSet, len(sets))
	for _, set := range sets {
		byCity[set.City] = set
	}

	for _, r := range ranges {
		if len(cities) > r.end-r.start+1 {
			return &RowRangeError{Table: r.table.Name, StartRow: r.start, EndRow: r.start + len(cities) - 1, HighestRow: r.end}
		}
	}

	for i, city := range cities {
		set, found := byCity[city]
		for _, r := range ranges {
			row := r.start + i
			b.set(cell(s.Columns.City, row), city)

			rec, ok := set.Day(r.table.Day)
			if found && ok {
				s.bindRow(b, r.table, row, rec)
				continue
			}
			if s.Missing == MissingCityFail {
				return &MissingCityError{City: city, Table: r.table.Name}
			}
			s.blankRow(b, row)
		}
	}
	return nil
}

func (s SpreadsheetScheme) bindRow(b *builder, t TableRegion, row int, rec weather.DayRecord) {
	c := s.Columns
	b.set(cell(c.TempDay, row), fmt.Sprintf("%d °C", rec.TempDay))
	b.set(cell(c.TempNight, row), fmt.Sprintf("%d °C", rec.TempNight))
	b.set(cell(c.WeatherDay, row), rec.WeatherDay)
	b.set(cell(c.WeatherNight, row), rec.WeatherNight)
	b.set(cell(c.CloudinessDay, row), rec.CloudinessDay)
	b.set(cell(c.CloudinessNight, row), rec.CloudinessNight)

	shared := b.set
	if s.Shared == SharedCellFirstWriterWins {
		shared = b.setOnce
	}
	shared(cell(c.Pressure, t.HeaderRow), fmt.Sprintf("%d мм", rec.PressureMmHg))
	shared(cell(c.WindSpeedDay, t.HeaderRow), fmt.Sprintf("%d м/с", rec.WindSpeedDay))
	shared(cell(c.WindSpeedNight, t.HeaderRow), fmt.Sprintf("%d м/с", rec.WindSpeedNight))
	shared(cell(c.WindDirectionDay, t.HeaderRow), rec.WindDirectionDay)
	shared(cell(c.WindDirectionNight, t.HeaderRow), rec.WindDirectionNight)
}

func (s SpreadsheetScheme) blankRow(b *builder, row int) {
	c := s.Columns
	for _, col := range []string{c.TempDay, c.TempNight, c.WeatherDay, c.WeatherNight, c.CloudinessDay, c.CloudinessNight} {
		b.set(cell(col, row), "")
	}
}
