package binding

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/meteo-template/internal/weather"
)

type fakeSheet struct {
	cells   map[string]string
	highest int
}

func (f fakeSheet) GetCellValue(address string) (string, error) {
	return f.cells[address], nil
}

func (f fakeSheet) HighestRow() (int, error) { return f.highest, nil }

var omst = time.FixedZone("OMST", 6*3600)

func testTargets() []weather.DayTarget {
	return weather.FixedTargets(time.Date(2026, time.October, 14, 10, 0, 0, 0, omst))
}

func record(tempDay, pressure int, dir string) weather.DayRecord {
	return weather.DayRecord{
		TempDay:            tempDay,
		TempNight:          tempDay - 8,
		PressureMmHg:       pressure,
		WindSpeedDay:       3,
		WindSpeedNight:     1,
		WindDirectionDay:   dir,
		WindDirectionNight: "Северное",
		WeatherDay:         weather.PhenomenonRain,
		WeatherNight:       weather.PhenomenonNone,
		CloudinessDay:      weather.CloudCloudy,
		CloudinessNight:    weather.CloudClear,
	}
}

func cityset(city string, tempDay, pressure int, dir string) weather.CityForecastSet {
	s := weather.NewCityForecastSet(city)
	s.Put(weather.LabelTomorrow, record(tempDay, pressure, dir))
	s.Put(weather.LabelDayAfter, record(tempDay+1, pressure+1, dir))
	return s
}

func templateSheet() fakeSheet {
	return fakeSheet{
		highest: 45,
		cells: map[string]string{
			"C8":  "Омск",
			"C9":  " Тара ",
			"C31": "Омск",
			"C32": "Тара",
		},
	}
}

func TestExtractCities(t *testing.T) {
	cities, err := DefaultSpreadsheetScheme().ExtractCities(templateSheet())
	require.NoError(t, err)

	assert.Equal(t, []ExtractedCity{
		{Name: "Омск", Table: "table1"},
		{Name: "Тара", Table: "table1"},
		{Name: "Омск", Table: "table2"},
		{Name: "Тара", Table: "table2"},
	}, cities)
	assert.Equal(t, []string{"Омск", "Тара"}, UniqueCityNames(cities))
}

func TestExtractCities_EmptySheet(t *testing.T) {
	_, err := DefaultSpreadsheetScheme().ExtractCities(fakeSheet{highest: 45})
	assert.ErrorIs(t, err, ErrNoCitiesInSheet)
}

func TestSpreadsheetBind_ByName(t *testing.T) {
	sets := []weather.CityForecastSet{
		cityset("Омск", 6, 760, "Южное"),
		cityset("Тара", 4, 750, "Западное"),
	}

	b, err := DefaultSpreadsheetScheme().Bind(templateSheet(), nil, sets, testTargets())
	require.NoError(t, err)

	get := func(addr string) string {
		v, ok := b.Get(addr)
		require.True(t, ok, "slot %s not bound", addr)
		return v
	}

	assert.Equal(t, "6 °C", get("T8"))
	assert.Equal(t, "-2 °C", get("BV8"))
	assert.Equal(t, weather.PhenomenonRain, get("AW8"))
	assert.Equal(t, weather.PhenomenonNone, get("BH8"))
	assert.Equal(t, weather.CloudCloudy, get("Z8"))
	assert.Equal(t, weather.CloudClear, get("BK8"))
	assert.Equal(t, "4 °C", get("T9"))
	assert.Equal(t, "7 °C", get("T31"))
	assert.Equal(t, "5 °C", get("T32"))

	// Shared header cells hold the last bound city.
	assert.Equal(t, "750 мм", get("BC6"))
	assert.Equal(t, "Западное", get("T6"))
	assert.Equal(t, "3 м/с", get("AL6"))
	assert.Equal(t, "1 м/с", get("BO6"))
	assert.Equal(t, "751 мм", get("BC29"))

	assert.Equal(t, "15.10.2026", get("L2"))
	assert.Equal(t, "15 октября", get("AG2"))
	assert.Equal(t, "ЧЕТВЕРГ", get("W2"))
	assert.Equal(t, "16.10.2026", get("L25"))
	assert.Equal(t, "ПЯТНИЦА", get("W25"))

	_, ok := b.Get("C8")
	assert.False(t, ok, "name lookup never rewrites the city column")
}

func TestSpreadsheetBind_FirstWriterWins(t *testing.T) {
	scheme := DefaultSpreadsheetScheme()
	scheme.Shared = SharedCellFirstWriterWins
	sets := []weather.CityForecastSet{
		cityset("Омск", 6, 760, "Южное"),
		cityset("Тара", 4, 750, "Западное"),
	}

	b, err := scheme.Bind(templateSheet(), nil, sets, testTargets())
	require.NoError(t, err)

	v, _ := b.Get("BC6")
	assert.Equal(t, "760 мм", v)
	v, _ = b.Get("T6")
	assert.Equal(t, "Южное", v)
}

func TestSpreadsheetBind_SlotOrder(t *testing.T) {
	sets := []weather.CityForecastSet{cityset("Омск", 6, 760, "Южное")}
	sheet := fakeSheet{highest: 45, cells: map[string]string{"C8": "Омск", "C31": "Омск"}}

	b, err := DefaultSpreadsheetScheme().Bind(sheet, nil, sets, testTargets())
	require.NoError(t, err)

	addrs := b.Addresses()
	require.NotEmpty(t, addrs)
	assert.Equal(t, "T8", addrs[0])
	assert.Equal(t, []string{"L2", "AG2", "W2", "L25", "AG25", "W25"}, addrs[len(addrs)-6:])
	assert.Len(t, b.Slots(), b.Len())
}

func TestSpreadsheetBind_MissingCitySkip(t *testing.T) {
	sheet := templateSheet()
	sheet.cells["C10"] = "Черлак"
	sets := []weather.CityForecastSet{cityset("Омск", 6, 760, "Южное")}

	b, err := DefaultSpreadsheetScheme().Bind(sheet, nil, sets, testTargets())
	require.NoError(t, err)

	for _, addr := range []string{"T9", "BV9", "AW9", "BH9", "Z9", "BK9", "T10"} {
		v, ok := b.Get(addr)
		assert.True(t, ok, addr)
		assert.Empty(t, v, addr)
	}
	v, _ := b.Get("BC6")
	assert.Equal(t, "760 мм", v)
}

func TestSpreadsheetBind_MissingCityFail(t *testing.T) {
	scheme := DefaultSpreadsheetScheme()
	scheme.Missing = MissingCityFail
	sets := []weather.CityForecastSet{cityset("Омск", 6, 760, "Южное")}

	_, err := scheme.Bind(templateSheet(), nil, sets, testTargets())
	var me *MissingCityError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "Тара", me.City)
	assert.Equal(t, "table1", me.Table)
}

func TestSpreadsheetBind_RowRange(t *testing.T) {
	sheet := templateSheet()
	sheet.highest = 40

	_, err := DefaultSpreadsheetScheme().Bind(sheet, nil, nil, testTargets())
	var re *RowRangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "table2", re.Table)
	assert.Equal(t, 40, re.HighestRow)

	lenient := DefaultSpreadsheetScheme()
	lenient.StrictRows = false
	_, err = lenient.Bind(sheet, nil, []weather.CityForecastSet{cityset("Омск", 6, 760, "Южное"), cityset("Тара", 4, 750, "Западное")}, testTargets())
	assert.NoError(t, err)

	sheet.highest = 30
	_, err = lenient.Bind(sheet, nil, nil, testTargets())
	assert.ErrorAs(t, err, &re)
}

func TestSpreadsheetBind_UnknownTableDay(t *testing.T) {
	now := time.Date(2026, time.October, 14, 10, 0, 0, 0, omst)
	targets, err := weather.CalendarTargets(now, []time.Time{now.AddDate(0, 0, 1)})
	require.NoError(t, err)

	_, err = DefaultSpreadsheetScheme().Bind(templateSheet(), nil, nil, targets)
	assert.True(t, errors.Is(err, ErrUnknownTableDay))
}

func TestSpreadsheetBind_ByPosition(t *testing.T) {
	scheme := DefaultSpreadsheetScheme()
	scheme.Lookup = RowByPosition
	cities := []string{"Омск", "Тара", "Черлак"}
	sets := []weather.CityForecastSet{
		cityset("Тара", 4, 750, "Западное"),
		cityset("Омск", 6, 760, "Южное"),
	}

	b, err := scheme.Bind(fakeSheet{highest: 45}, cities, sets, testTargets())
	require.NoError(t, err)

	v, _ := b.Get("C8")
	assert.Equal(t, "Омск", v)
	v, _ = b.Get("T8")
	assert.Equal(t, "6 °C", v)
	v, _ = b.Get("C9")
	assert.Equal(t, "Тара", v)
	v, _ = b.Get("T9")
	assert.Equal(t, "4 °C", v)
	v, _ = b.Get("C10")
	assert.Equal(t, "Черлак", v)
	v, ok := b.Get("T10")
	assert.True(t, ok)
	assert.Empty(t, v)
	v, _ = b.Get("C33")
	assert.Equal(t, "Черлак", v)
}

func TestSpreadsheetBind_ByPositionTooManyCities(t *testing.T) {
	scheme := DefaultSpreadsheetScheme()
	scheme.Lookup = RowByPosition
	scheme.Tables = []TableRegion{{Name: "small", Day: weather.LabelTomorrow, StartRow: 3, EndRow: 4, HeaderRow: 1, DateRow: 1}}

	_, err := scheme.Bind(fakeSheet{highest: 10}, []string{"Омск", "Тара", "Черлак"}, nil, testTargets())
	var re *RowRangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "small", re.Table)
}

func TestParseSchemeOptions(t *testing.T) {
	l, err := ParseRowLookup("")
	require.NoError(t, err)
	assert.Equal(t, RowByName, l)
	_, err = ParseRowLookup("column")
	assert.Error(t, err)

	m, err := ParseSharedCellMode("first-writer-wins")
	require.NoError(t, err)
	assert.Equal(t, SharedCellFirstWriterWins, m)
	_, err = ParseSharedCellMode("merge")
	assert.Error(t, err)

	p, err := ParseMissingCityPolicy("fail")
	require.NoError(t, err)
	assert.Equal(t, MissingCityFail, p)
	_, err = ParseMissingCityPolicy("ignore")
	assert.Error(t, err)
}
