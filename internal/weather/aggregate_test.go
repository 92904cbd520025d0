package weather

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoDaySamples() []ForecastSample {
	return []ForecastSample{
		sampleAt(localTime(2026, time.October, 15, 3), -1),
		sampleAt(localTime(2026, time.October, 15, 15), 8),
		sampleAt(localTime(2026, time.October, 16, 3), -2),
		sampleAt(localTime(2026, time.October, 16, 15), 9),
	}
}

func TestAggregateCity_FixedTargets(t *testing.T) {
	now := localTime(2026, time.October, 14, 10)
	sel := newTestSelector(now, MatchDayOfMonth)

	set, err := Deriver{}.AggregateCity(sel, "Омск", twoDaySamples(), FixedTargets(now))
	require.NoError(t, err)

	assert.Equal(t, "Омск", set.City)
	assert.Equal(t, []string{LabelTomorrow, LabelDayAfter}, set.Labels)

	tomorrow, ok := set.Day(LabelTomorrow)
	require.True(t, ok)
	assert.Equal(t, 8, tomorrow.TempDay)
	assert.Equal(t, -1, tomorrow.TempNight)
	assert.False(t, tomorrow.DayFallback)
	assert.False(t, tomorrow.NightFallback)

	after, ok := set.Day(LabelDayAfter)
	require.True(t, ok)
	assert.Equal(t, 9, after.TempDay)
	assert.Equal(t, -2, after.TempNight)
}

func TestAggregateCity_MarksFallbacks(t *testing.T) {
	now := localTime(2026, time.October, 14, 10)
	sel := newTestSelector(now, MatchDayOfMonth)
	samples := twoDaySamples()[:3] // no 16 Oct 15:00

	set, err := Deriver{}.AggregateCity(sel, "Тара", samples, FixedTargets(now))
	require.NoError(t, err)

	after, _ := set.Day(LabelDayAfter)
	assert.True(t, after.DayFallback)
	assert.False(t, after.NightFallback)
	assert.Equal(t, -1, after.TempDay, "fallback uses the first sample")
}

func TestAggregateCity_RejectsNonFutureOffset(t *testing.T) {
	now := localTime(2026, time.October, 14, 10)
	sel := newTestSelector(now, MatchDayOfMonth)

	_, err := Deriver{}.AggregateCity(sel, "Омск", twoDaySamples(), []DayTarget{{Label: "today", Offset: 0}})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestAggregateCity_NoSamples(t *testing.T) {
	now := localTime(2026, time.October, 14, 10)
	sel := newTestSelector(now, MatchDayOfMonth)

	_, err := Deriver{}.AggregateCity(sel, "Омск", nil, FixedTargets(now))
	assert.ErrorIs(t, err, ErrNoSamples)
}

func TestFixedTargets(t *testing.T) {
	now := localTime(2026, time.December, 31, 23)
	targets := FixedTargets(now)

	require.Len(t, targets, 2)
	assert.Equal(t, LabelTomorrow, targets[0].Label)
	assert.Equal(t, 1, targets[0].Offset)
	assert.Equal(t, localTime(2027, time.January, 1, 0), targets[0].Date)
	assert.Equal(t, LabelDayAfter, targets[1].Label)
	assert.Equal(t, 2, targets[1].Offset)
	assert.Equal(t, localTime(2027, time.January, 2, 0), targets[1].Date)
}

func TestCalendarTargets_SortsAndDeduplicates(t *testing.T) {
	now := localTime(2026, time.October, 14, 10)
	dates := []time.Time{
		localTime(2026, time.October, 18, 0),
		localTime(2026, time.October, 16, 0),
		localTime(2026, time.October, 18, 12),
		localTime(2026, time.October, 15, 0),
	}

	targets, err := CalendarTargets(now, dates)
	require.NoError(t, err)
	require.Len(t, targets, 3)

	assert.Equal(t, "1", targets[0].Label)
	assert.Equal(t, 1, targets[0].Offset)
	assert.Equal(t, "2", targets[1].Label)
	assert.Equal(t, 2, targets[1].Offset)
	assert.Equal(t, "3", targets[2].Label)
	assert.Equal(t, 4, targets[2].Offset)
}

func TestCalendarTargets_RejectsTodayAndPast(t *testing.T) {
	now := localTime(2026, time.October, 14, 10)

	_, err := CalendarTargets(now, []time.Time{localTime(2026, time.October, 14, 0)})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = CalendarTargets(now, []time.Time{localTime(2026, time.October, 1, 0)})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestCityForecastSet_JSONKeepsLabelOrder(t *testing.T) {
	set := NewCityForecastSet("Омск")
	set.Put(LabelTomorrow, DayRecord{TempDay: 6, TempNight: -3, PressureMmHg: 760})
	set.Put(LabelDayAfter, DayRecord{TempDay: 4})
	set.Put(LabelTomorrow, DayRecord{TempDay: 7})

	data, err := json.Marshal(set)
	require.NoError(t, err)

	s := string(data)
	assert.Regexp(t, `^\{"city":"Омск","tomorrow":\{"tempDay":7,.*\},"dayAfter":\{"tempDay":4,.*\}\}$`, s)
	assert.NotContains(t, s, "dayFallback")

	var back CityForecastSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, set.City, back.City)
	assert.Equal(t, set.Labels, back.Labels)
	assert.Equal(t, set.Days, back.Days)
}

func TestCityForecastSet_UnmarshalPreservesInputOrder(t *testing.T) {
	raw := `{"dayAfter":{"tempDay":1},"city":"Тара","tomorrow":{"tempDay":2}}`

	var set CityForecastSet
	require.NoError(t, json.Unmarshal([]byte(raw), &set))
	assert.Equal(t, "Тара", set.City)
	assert.Equal(t, []string{LabelDayAfter, LabelTomorrow}, set.Labels)

	err := json.Unmarshal([]byte(`[1,2]`), &set)
	assert.Error(t, err)
}
