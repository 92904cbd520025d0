package binding

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/meteo-template/internal/weather"
)

func calendarTargets(t *testing.T, days ...int) []weather.DayTarget {
	t.Helper()
	now := time.Date(2026, time.October, 14, 10, 0, 0, 0, omst)
	dates := make([]time.Time, 0, len(days))
	for _, d := range days {
		dates = append(dates, time.Date(2026, time.October, d, 0, 0, 0, 0, omst))
	}
	targets, err := weather.CalendarTargets(now, dates)
	require.NoError(t, err)
	return targets
}

func TestFlatBind(t *testing.T) {
	set := weather.NewCityForecastSet("Омск")
	set.Put("1", weather.DayRecord{
		TempDay: 6, TempNight: -3, PressureMmHg: 760,
		WindSpeedDay: 4, WindDirectionDay: "Южное", WeatherDay: weather.PhenomenonRain,
	})

	b, err := FlatScheme{GrafCodes: []string{"101"}}.Bind([]string{"Омск"}, []weather.CityForecastSet{set}, calendarTargets(t, 16))
	require.NoError(t, err)

	want := []Slot{
		{Address: "Date_1", Value: "16 октября"},
		{Address: "Weekday_1", Value: "пятница"},
		{Address: "Dates", Value: "пятницу"},
		{Address: "City1", Value: "Омск"},
		{Address: "Graf1", Value: "101"},
		{Address: "Temp1_1", Value: "+6°"},
		{Address: "TempNight1_1", Value: "-3°"},
		{Address: "Icon1_1", Value: "rain.png"},
		{Address: "Wind1_1", Value: "Южное, 4 м/с"},
		{Address: "Pressure1_1", Value: "760 мм рт. ст."},
	}
	assert.Equal(t, want, b.Slots())
}

func TestFlatBind_KeepsCityOrder(t *testing.T) {
	targets := calendarTargets(t, 15)
	var sets []weather.CityForecastSet
	for _, city := range []string{"Тара", "Омск", "Черлак"} {
		s := weather.NewCityForecastSet(city)
		s.Put("1", weather.DayRecord{})
		sets = append(sets, s)
	}

	b, err := FlatScheme{GrafCodes: []string{"a", "b"}}.Bind(nil, sets, targets)
	require.NoError(t, err)

	for i, city := range []string{"Тара", "Омск", "Черлак"} {
		v, ok := b.Get("City" + strconv.Itoa(i+1))
		require.True(t, ok)
		assert.Equal(t, city, v)
	}
	_, ok := b.Get("Graf3")
	assert.False(t, ok, "cities beyond the code list get no Graf field")
	v, _ := b.Get("Temp3_1")
	assert.Equal(t, "0°", v)
	v, _ = b.Get("Icon3_1")
	assert.Equal(t, DefaultIcon, v)
}

func TestFlatBind_DatesSentence(t *testing.T) {
	b, err := FlatScheme{}.Bind(nil, nil, calendarTargets(t, 18, 16, 17))
	require.NoError(t, err)

	v, _ := b.Get("Dates")
	assert.Equal(t, "пятницу, субботу и воскресенье", v)
	v, _ = b.Get("Weekday_3")
	assert.Equal(t, "воскресенье", v)
	v, _ = b.Get("Date_1")
	assert.Equal(t, "16 октября", v)
}

func TestFlatBind_BlanksMissingDays(t *testing.T) {
	set := weather.NewCityForecastSet("Омск")
	set.Put("2", weather.DayRecord{TempDay: 1})

	b, err := FlatScheme{}.Bind([]string{"Омск"}, []weather.CityForecastSet{set}, calendarTargets(t, 15, 16))
	require.NoError(t, err)

	for _, field := range []string{"Temp1_1", "TempNight1_1", "Icon1_1", "Wind1_1", "Pressure1_1"} {
		v, ok := b.Get(field)
		require.True(t, ok, field)
		assert.Empty(t, v, field)
	}
	v, _ := b.Get("Temp1_2")
	assert.Equal(t, "+1°", v)
}

func TestFlatBind_MissingFirstCityKeepsIndexes(t *testing.T) {
	cities := []string{"Омск", "Тара", "Черлак"}
	var sets []weather.CityForecastSet
	for i, city := range cities[1:] {
		s := weather.NewCityForecastSet(city)
		s.Put("1", weather.DayRecord{TempDay: i + 1})
		sets = append(sets, s)
	}

	b, err := FlatScheme{GrafCodes: []string{"101", "102", "103"}}.Bind(cities, sets, calendarTargets(t, 15))
	require.NoError(t, err)

	for address, want := range map[string]string{
		"City1":   "Омск",
		"Graf1":   "101",
		"Temp1_1": "",
		"Icon1_1": "",
		"City2":   "Тара",
		"Graf2":   "102",
		"Temp2_1": "+1°",
		"City3":   "Черлак",
		"Graf3":   "103",
		"Temp3_1": "+2°",
	} {
		v, ok := b.Get(address)
		require.True(t, ok, address)
		assert.Equal(t, want, v, address)
	}
}

func TestFlatBind_MissingCityFail(t *testing.T) {
	set := weather.NewCityForecastSet("Тара")
	set.Put("1", weather.DayRecord{})

	_, err := FlatScheme{Missing: MissingCityFail}.Bind([]string{"Омск", "Тара"}, []weather.CityForecastSet{set}, calendarTargets(t, 15))

	var me *MissingCityError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "Омск", me.City)
	assert.Equal(t, "1", me.Table)
}

func TestFormatTemp(t *testing.T) {
	assert.Equal(t, "+6°", FormatTemp(6))
	assert.Equal(t, "-3°", FormatTemp(-3))
	assert.Equal(t, "0°", FormatTemp(0))
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, "thunderstorm.png", IconFor(weather.PhenomenonThunderstorm))
	assert.Equal(t, "overcast.png", IconFor(weather.CloudOvercast))
	assert.Equal(t, DefaultIcon, IconFor("небольшой дождь"))
}
