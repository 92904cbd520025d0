package binding

import (
	"fmt"
	"time"

	"github.com/i474232898/meteo-template/internal/weather"
)

// DefaultIcon is used for weather labels without a dedicated icon.
const DefaultIcon = "default.png"

var icons = map[string]string{
	weather.PhenomenonThunderstorm: "thunderstorm.png",
	weather.PhenomenonDrizzle:      "drizzle.png",
	weather.PhenomenonRain:         "rain.png",
	weather.PhenomenonSnow:         "snow.png",
	weather.PhenomenonFog:          "fog.png",
	weather.PhenomenonSquall:       "squall.png",
	weather.PhenomenonHaze:         "haze.png",
	weather.PhenomenonNone:         "clear.png",
	weather.CloudClear:             "clear.png",
	weather.CloudFew:               "partly_cloudy.png",
	weather.CloudVariable:          "partly_cloudy.png",
	weather.CloudCloudy:            "cloudy.png",
	weather.CloudOvercast:          "overcast.png",
}

// IconFor resolves the icon filename of a weather label.
func IconFor(label string) string {
	if icon, ok := icons[label]; ok {
		return icon
	}
	return DefaultIcon
}

// FlatScheme binds record sets to flat named fields.
type FlatScheme struct {
	// GrafCodes is indexed by city position; cities past the end get no Graf field.
	GrafCodes []string
	// Missing decides how a city without a record for a day is rendered.
	Missing MissingCityPolicy
}

// FormatTemp renders a sign-prefixed, degree-suffixed temperature ("+6°", "-3°", "0°").
func FormatTemp(t int) string {
	if t > 0 {
		return fmt.Sprintf("+%d°", t)
	}
	return fmt.Sprintf("%d°", t)
}

// Bind emits, for every city index i (1-based) and day label s, the fields
// City{i}, Temp{i}_{s}, TempNight{i}_{s}, Icon{i}_{s}, Wind{i}_{s}, Pressure{i}_{s}
// and Graf{i}; plus Date_{s}, Weekday_{s} per day and one Dates sentence.
//
// Cities fix the index of every city so a failed fetch never shifts its
// neighbours; an empty list falls back to the order of sets. Sets are matched
// by city name. A city or day without a record gets blank weather fields, or a
// *MissingCityError when Missing is MissingCityFail.
func (f FlatScheme) Bind(cities []string, sets []weather.CityForecastSet, targets []weather.DayTarget) (Binding, error) {
	b := newBuilder()

	dates := make([]time.Time, 0, len(targets))
	for _, t := range targets {
		b.set("Date_"+t.Label, DayMonth(t.Date))
		b.set("Weekday_"+t.Label, WeekdayName(t.Date.Weekday()))
		dates = append(dates, t.Date)
	}
	b.set("Dates", WeekdaySentence(dates))

	byName := make(map[string]weather.CityForecastSet, len(sets))
	for _, set := range sets {
		byName[set.City] = set
	}
	if len(cities) == 0 {
		for _, set := range sets {
			cities = append(cities, set.City)
		}
	}

	for i, city := range cities {
		n := i + 1
		b.set(fmt.Sprintf("City%d", n), city)
		if i < len(f.GrafCodes) {
			b.set(fmt.Sprintf("Graf%d", n), f.GrafCodes[i])
		}

		set, found := byName[city]
		for _, t := range targets {
			suffix := fmt.Sprintf("%d_%s", n, t.Label)
			var rec weather.DayRecord
			ok := false
			if found {
				rec, ok = set.Day(t.Label)
			}
			if !ok {
				if f.Missing == MissingCityFail {
					return Binding{}, &MissingCityError{City: city, Table: t.Label}
				}
				for _, field := range flatWeatherFields {
					b.set(field+suffix, "")
				}
				continue
			}
			b.set("Temp"+suffix, FormatTemp(rec.TempDay))
			b.set("TempNight"+suffix, FormatTemp(rec.TempNight))
			b.set("Icon"+suffix, IconFor(rec.WeatherDay))
			b.set("Wind"+suffix, fmt.Sprintf("%s, %d м/с", rec.WindDirectionDay, rec.WindSpeedDay))
			b.set("Pressure"+suffix, fmt.Sprintf("%d мм рт. ст.", rec.PressureMmHg))
		}
	}

	return b.build(), nil
}

var flatWeatherFields = []string{"Temp", "TempNight", "Icon", "Wind", "Pressure"}
