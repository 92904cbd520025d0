package binding

import (
	"fmt"
	"strings"
	"time"
)

var monthsGenitive = [12]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var weekdays = [7]string{
	"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота",
}

// Accusative forms used inside a sentence ("в пятницу").
var weekdaysAccusative = map[time.Weekday]string{
	time.Friday:   "пятницу",
	time.Saturday: "субботу",
}

// MonthGenitive returns the genitive month name ("октября").
func MonthGenitive(m time.Month) string {
	return monthsGenitive[m-1]
}

// WeekdayName returns the lower-case weekday name.
func WeekdayName(d time.Weekday) string {
	return weekdays[d]
}

// DayMonth renders "05 октября".
func DayMonth(t time.Time) string {
	return fmt.Sprintf("%02d %s", t.Day(), MonthGenitive(t.Month()))
}

// ShortDayMonth renders "5 октября".
func ShortDayMonth(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), MonthGenitive(t.Month()))
}

// NumericDate renders "05.10.2026".
func NumericDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// WeekdaySentence joins the weekdays of dates as "пятницу, субботу и воскресенье".
func WeekdaySentence(dates []time.Time) string {
	names := make([]string, 0, len(dates))
	for _, d := range dates {
		name, ok := weekdaysAccusative[d.Weekday()]
		if !ok {
			name = WeekdayName(d.Weekday())
		}
		names = append(names, name)
	}
	return JoinRussian(names)
}

// JoinRussian joins items with ", " and replaces the final separator with " и ".
func JoinRussian(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " и " + items[len(items)-1]
}
