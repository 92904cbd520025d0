package weather

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Labels of the fixed two-day view.
const (
	LabelTomorrow = "tomorrow"
	LabelDayAfter = "dayAfter"
)

// AggregateCity builds the record set of one city for every requested target.
func (d Deriver) AggregateCity(sel *Selector, city string, samples []ForecastSample, targets []DayTarget) (CityForecastSet, error) {
	set := NewCityForecastSet(city)

	for _, t := range targets {
		if t.Offset < 1 {
			return CityForecastSet{}, fmt.Errorf("%w: %q has offset %d", ErrInvalidTarget, t.Label, t.Offset)
		}

		day, err := sel.Select(samples, t.Offset, DayHour)
		if err != nil {
			return CityForecastSet{}, err
		}
		night, err := sel.Select(samples, t.Offset, NightHour)
		if err != nil {
			return CityForecastSet{}, err
		}

		rec, err := d.BuildDayRecord(day.Sample, night.Sample)
		if err != nil {
			return CityForecastSet{}, fmt.Errorf("%s: %w", t.Label, err)
		}
		rec.DayFallback = day.Fallback
		rec.NightFallback = night.Fallback

		set.Put(t.Label, rec)
	}

	return set, nil
}

// FixedTargets returns the tomorrow / day-after-tomorrow pair relative to now.
func FixedTargets(now time.Time) []DayTarget {
	today := truncateDay(now)
	return []DayTarget{
		{Label: LabelTomorrow, Offset: 1, Date: today.AddDate(0, 0, 1)},
		{Label: LabelDayAfter, Offset: 2, Date: today.AddDate(0, 0, 2)},
	}
}

// CalendarTargets converts selected calendar dates into targets labelled 1..n in
// date order. Duplicate dates are collapsed. Dates are interpreted in now's location.
func CalendarTargets(now time.Time, dates []time.Time) ([]DayTarget, error) {
	today := truncateDay(now)

	seen := make(map[string]bool, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
		key := day.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	targets := make([]DayTarget, 0, len(days))
	for i, day := range days {
		offset := daysBetween(today, day)
		if offset < 1 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, day.Format("2006-01-02"))
		}
		targets = append(targets, DayTarget{
			Label:  strconv.Itoa(i + 1),
			Offset: offset,
			Date:   day,
		})
	}
	return targets, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days, ignoring DST shifts.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
