package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/meteo-template/internal/binding"
	"github.com/i474232898/meteo-template/internal/weather"
)

func sampleBinding(t *testing.T) binding.Binding {
	t.Helper()
	now := time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)
	targets, err := weather.CalendarTargets(now, []time.Time{now.AddDate(0, 0, 2)})
	require.NoError(t, err)

	set := weather.NewCityForecastSet("Омск")
	set.Put("1", weather.DayRecord{TempDay: 6, TempNight: -3, PressureMmHg: 760, WindSpeedDay: 4, WindDirectionDay: "Южное"})
	b, err := binding.FlatScheme{}.Bind(nil, []weather.CityForecastSet{set}, targets)
	require.NoError(t, err)
	return b
}

func TestForFormat(t *testing.T) {
	s, err := ForFormat("")
	require.NoError(t, err)
	assert.Equal(t, "json", s.Extension())

	s, err = ForFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", s.Extension())
	assert.Contains(t, s.ContentType(), "text/csv")

	_, err = ForFormat("xml")
	assert.Error(t, err)
}

func TestJSONSink_KeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONSink{}.Write(&buf, sampleBinding(t)))

	assert.Equal(t,
		`{"Date_1":"16 октября","Weekday_1":"пятница","Dates":"пятницу","City1":"Омск",`+
			`"Temp1_1":"+6°","TempNight1_1":"-3°","Icon1_1":"default.png","Wind1_1":"Южное, 4 м/с",`+
			`"Pressure1_1":"760 мм рт. ст."}`,
		buf.String())
}

func TestJSONSink_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONSink{}.Write(&buf, binding.Binding{}))
	assert.Equal(t, "{}", buf.String())
}

func TestCSVSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVSink{}.Write(&buf, sampleBinding(t)))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 10)
	assert.Equal(t, "key,value", string(lines[0]))
	assert.Equal(t, "Date_1,16 октября", string(lines[1]))
	assert.Equal(t, `Wind1_1,"Южное, 4 м/с"`, string(lines[8]))
}
