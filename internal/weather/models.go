package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ForecastSample is one discrete provider data point, typically at 3-hour granularity.
type ForecastSample struct {
	Timestamp    time.Time // always UTC
	TemperatureC float64
	PressureHpa  float64
	WindSpeedMS  float64
	// WindDegrees is nil when the provider reports calm wind without a direction.
	WindDegrees   *float64
	CloudPercent  float64
	ConditionCode int
	// Description is the provider's own localized text for the condition.
	Description string
}

// DayRecord is the derived per-city, per-day view. Every numeric field is rounded.
type DayRecord struct {
	TempDay            int    `json:"tempDay"`
	TempNight          int    `json:"tempNight"`
	PressureMmHg       int    `json:"pressure"`
	WindSpeedDay       int    `json:"windSpeedDay"`
	WindSpeedNight     int    `json:"windSpeedNight"`
	WindDirectionDay   string `json:"windDirectionDay"`
	WindDirectionNight string `json:"windDirectionNight"`
	WeatherDay         string `json:"weatherDay"`
	WeatherNight       string `json:"weatherNight"`
	CloudinessDay      string `json:"cloudinessDay"`
	CloudinessNight    string `json:"cloudinessNight"`

	// Set when the selector substituted the first available sample.
	DayFallback   bool `json:"dayFallback,omitempty"`
	NightFallback bool `json:"nightFallback,omitempty"`
}

// DayTarget names one requested calendar day.
type DayTarget struct {
	Label  string    `json:"label"`
	Offset int       `json:"offset"`
	Date   time.Time `json:"date"`
}

// CityForecastSet holds the records of one city keyed by day label.
// Labels keeps the insertion order of the requested targets.
type CityForecastSet struct {
	City   string
	Labels []string
	Days   map[string]DayRecord
}

// NewCityForecastSet creates an empty set for city.
func NewCityForecastSet(city string) CityForecastSet {
	return CityForecastSet{
		City: city,
		Days: make(map[string]DayRecord),
	}
}

// Put stores rec under label, keeping the first insertion position.
func (s *CityForecastSet) Put(label string, rec DayRecord) {
	if s.Days == nil {
		s.Days = make(map[string]DayRecord)
	}
	if _, ok := s.Days[label]; !ok {
		s.Labels = append(s.Labels, label)
	}
	s.Days[label] = rec
}

// Day returns the record stored under label.
func (s CityForecastSet) Day(label string) (DayRecord, bool) {
	rec, ok := s.Days[label]
	return rec, ok
}

// MarshalJSON renders {"city": ..., "<label>": {...}, ...} with labels in order.
func (s CityForecastSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	name, err := json.Marshal(s.City)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"city":`)
	buf.Write(name)

	for _, label := range s.Labels {
		key, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		rec, err := json.Marshal(s.Days[label])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(rec)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the shape produced by MarshalJSON. Object key order is preserved.
func (s *CityForecastSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("city forecast set: expected object")
	}

	out := NewCityForecastSet("")
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		if key == "city" {
			if err := dec.Decode(&out.City); err != nil {
				return fmt.Errorf("city forecast set: city: %w", err)
			}
			continue
		}
		var rec DayRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("city forecast set: day %q: %w", key, err)
		}
		out.Put(key, rec)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = out
	return nil
}
