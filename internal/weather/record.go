package weather

import "fmt"

// Deriver turns raw samples into display records.
type Deriver struct {
	Cloudiness CloudinessMode
	Phenomena  PhenomenonStrategy
}

// NewDeriver creates a Deriver; zero values fall back to bands and the range strategy.
func NewDeriver(cloudiness CloudinessMode, phenomena PhenomenonStrategy) Deriver {
	if cloudiness == "" {
		cloudiness = CloudinessBands
	}
	if phenomena == nil {
		phenomena = RangePhenomena{}
	}
	return Deriver{Cloudiness: cloudiness, Phenomena: phenomena}
}

// BuildDayRecord combines a 15:00 sample and a 03:00 sample into one record.
// The pair is not cross-checked; either may be a fallback substitute.
func (d Deriver) BuildDayRecord(day, night ForecastSample) (DayRecord, error) {
	d = NewDeriver(d.Cloudiness, d.Phenomena)

	dirDay, err := WindDirectionLabel(day.WindDegrees)
	if err != nil {
		return DayRecord{}, fmt.Errorf("day sample at %s: %w", day.Timestamp.Format("2006-01-02 15:04"), err)
	}
	dirNight, err := WindDirectionLabel(night.WindDegrees)
	if err != nil {
		return DayRecord{}, fmt.Errorf("night sample at %s: %w", night.Timestamp.Format("2006-01-02 15:04"), err)
	}

	return DayRecord{
		TempDay:            round(day.TemperatureC),
		TempNight:          round(night.TemperatureC),
		PressureMmHg:       PressureMmHg(day.PressureHpa),
		WindSpeedDay:       round(day.WindSpeedMS),
		WindSpeedNight:     round(night.WindSpeedMS),
		WindDirectionDay:   dirDay,
		WindDirectionNight: dirNight,
		WeatherDay:         d.Phenomena.Label(day.ConditionCode, day.Description),
		WeatherNight:       d.Phenomena.Label(night.ConditionCode, night.Description),
		CloudinessDay:      d.Cloudiness.label(day),
		CloudinessNight:    d.Cloudiness.label(night),
	}, nil
}
