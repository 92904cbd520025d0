package weather

import (
	"fmt"
	"math"
	"strconv"
)

// hPa to mmHg.
const mmHgPerHpa = 0.750062

// Compass labels starting at North, clockwise, 45° sectors.
var windDirections = [8]string{
	"Северное",
	"Северо-Восток",
	"Восточное",
	"Юго-Восток",
	"Южное",
	"Юго-Запад",
	"Западное",
	"Северо-Запад",
}

// WindDirections returns the eight compass labels in clockwise order from North.
func WindDirections() []string {
	out := make([]string, len(windDirections))
	copy(out, windDirections[:])
	return out
}

// WindDirectionLabel maps wind degrees to one of the eight compass labels.
func WindDirectionLabel(degrees *float64) (string, error) {
	if degrees == nil || math.IsNaN(*degrees) || math.IsInf(*degrees, 0) {
		return "", ErrCalmWind
	}
	d := math.Mod(*degrees, 360)
	if d < 0 {
		d += 360
	}
	idx := int(math.Round(d/45)) % 8
	return windDirections[idx], nil
}

// Cloudiness band labels.
const (
	CloudClear    = "Ясно"
	CloudFew      = "Малооблачно"
	CloudVariable = "Переменная облачность"
	CloudCloudy   = "Облачно"
	CloudOvercast = "Пасмурно"
)

// CloudinessLabel maps cloud cover percent to a band. Upper bounds are inclusive.
func CloudinessLabel(percent float64) string {
	switch {
	case percent <= 10:
		return CloudClear
	case percent <= 30:
		return CloudFew
	case percent <= 70:
		return CloudVariable
	case percent <= 90:
		return CloudCloudy
	default:
		return CloudOvercast
	}
}

// CloudinessMode selects how the cloudiness fields of a DayRecord are rendered.
type CloudinessMode string

const (
	CloudinessBands     CloudinessMode = "label"
	CloudinessPercent   CloudinessMode = "percent"
	CloudinessCondition CloudinessMode = "condition"
)

// ParseCloudinessMode validates a configured cloudiness mode name.
func ParseCloudinessMode(s string) (CloudinessMode, error) {
	switch CloudinessMode(s) {
	case CloudinessBands, CloudinessPercent, CloudinessCondition:
		return CloudinessMode(s), nil
	case "":
		return CloudinessBands, nil
	default:
		return "", fmt.Errorf("unknown cloudiness mode %q", s)
	}
}

var cloudConditionLabels = map[int]string{
	800: CloudClear,
	801: CloudFew,
	802: CloudVariable,
	803: CloudCloudy,
	804: CloudOvercast,
}

func (m CloudinessMode) label(s ForecastSample) string {
	switch m {
	case CloudinessPercent:
		return strconv.Itoa(int(math.Round(s.CloudPercent))) + "%"
	case CloudinessCondition:
		if l, ok := cloudConditionLabels[s.ConditionCode]; ok {
			return l
		}
		return CloudinessLabel(s.CloudPercent)
	default:
		return CloudinessLabel(s.CloudPercent)
	}
}

// Phenomenon labels of the range strategy.
const (
	PhenomenonThunderstorm = "Гроза"
	PhenomenonDrizzle      = "Морось"
	PhenomenonRain         = "Дождь"
	PhenomenonSnow         = "Снег"
	PhenomenonFog          = "Туман"
	PhenomenonSquall       = "Шквал"
	PhenomenonHaze         = "Дымка"
	PhenomenonNone         = "Без осадков"
)

// PhenomenonStrategy classifies a provider condition code.
type PhenomenonStrategy interface {
	Name() string
	Label(code int, description string) string
}

// RangePhenomena buckets codes by hundreds with exact overrides in the 7xx group.
type RangePhenomena struct{}

func (RangePhenomena) Name() string { return "range" }

func (RangePhenomena) Label(code int, _ string) string {
	switch {
	case code >= 200 && code < 300:
		return PhenomenonThunderstorm
	case code >= 300 && code < 400:
		return PhenomenonDrizzle
	case code >= 500 && code < 600:
		return PhenomenonRain
	case code >= 600 && code < 700:
		return PhenomenonSnow
	case code >= 700 && code < 800:
		switch code {
		case 741:
			return PhenomenonFog
		case 771:
			return PhenomenonSquall
		default:
			return PhenomenonHaze
		}
	default:
		return PhenomenonNone
	}
}

// LookupPhenomena maps exact codes to fixed labels and falls back to the provider text.
type LookupPhenomena struct{}

var phenomenonTable = map[int]string{
	200: "Гроза",
	300: "Морось",
	500: "Дождь",
	600: "Снег",
	700: "Туман",
	800: "Ясно",
	801: "Малооблачно",
	802: "Переменная облачность",
	803: "Облачно",
	804: "Пасмурно",
}

func (LookupPhenomena) Name() string { return "lookup" }

func (LookupPhenomena) Label(code int, description string) string {
	if l, ok := phenomenonTable[code]; ok {
		return l
	}
	return description
}

// ParsePhenomenonStrategy returns the strategy registered under name.
func ParsePhenomenonStrategy(name string) (PhenomenonStrategy, error) {
	switch name {
	case "", "range":
		return RangePhenomena{}, nil
	case "lookup":
		return LookupPhenomena{}, nil
	default:
		return nil, fmt.Errorf("unknown phenomenon strategy %q", name)
	}
}

// PressureMmHg converts hPa to rounded mmHg.
func PressureMmHg(hpa float64) int {
	return round(hpa * mmHgPerHpa)
}

// round is half away from zero.
func round(v float64) int {
	return int(math.Round(v))
}
